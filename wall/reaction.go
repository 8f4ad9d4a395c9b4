package wall

import "wallterm/domain"

// ToggleReaction recomputes an item's reaction map for the current user
// choosing emoji. Reacting with the current reaction removes it; reacting
// with a different emoji moves the user's single reaction over. The item is
// mutated in place; callers snapshot first if the change may roll back.
func ToggleReaction(item *domain.FeedItem, emoji, userID string) {
	if item.Reactions == nil {
		item.Reactions = make(map[string]domain.ReactionGroup)
	}

	if item.UserReaction == emoji {
		removeReaction(item, emoji, userID)
		item.UserReaction = ""
		return
	}
	if item.UserReaction != "" {
		removeReaction(item, item.UserReaction, userID)
	}
	g := item.Reactions[emoji]
	g.Count++
	g.UserIDs = append(g.UserIDs, userID)
	item.Reactions[emoji] = g
	item.UserReaction = emoji
}

func removeReaction(item *domain.FeedItem, emoji, userID string) {
	g, ok := item.Reactions[emoji]
	if !ok {
		return
	}
	g.Count--
	for i, id := range g.UserIDs {
		if id == userID {
			g.UserIDs = append(g.UserIDs[:i], g.UserIDs[i+1:]...)
			break
		}
	}
	if g.Count <= 0 {
		delete(item.Reactions, emoji)
		return
	}
	item.Reactions[emoji] = g
}

func userReactionOf(reactions map[string]domain.ReactionGroup, userID string) string {
	for emoji, g := range reactions {
		for _, id := range g.UserIDs {
			if id == userID {
				return emoji
			}
		}
	}
	return ""
}
