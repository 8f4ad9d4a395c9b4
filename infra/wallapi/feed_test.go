package wallapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wallterm/infra/auth"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, auth.StaticTokenProvider("test-token"))
}

func TestWallMessages_MapsWireShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/walls/w1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %s, want 2", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q", got)
		}
		w.Write([]byte(`{"messages":[{
			"id":"m1",
			"author":{"id":"u2","username":"alice","avatarUrl":"http://x/a.png"},
			"content":"hello #go",
			"createdAt":"2026-08-30T10:00:00Z",
			"attachments":[{"type":"image","url":"http://x/i.png","filename":"i.png"}],
			"likesCount":3,
			"hasLiked":true,
			"commentsCount":5,
			"tags":["go"],
			"reactions":[
				{"emoji":"👍","count":2,"users":["me","u2"]},
				{"emoji":"❤️","count":0,"users":[]}
			]
		}]}`))
	})

	items, err := NewFeedService(client, "me").WallMessages(context.Background(), "w1", 2, 20)
	if err != nil {
		t.Fatalf("WallMessages: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	m := items[0]
	if m.ID != "m1" || m.AuthorName != "alice" || m.LikeCount != 3 || !m.Liked {
		t.Errorf("unexpected item: %+v", m)
	}
	if m.ReplyCount != 5 {
		t.Errorf("ReplyCount = %d, want 5", m.ReplyCount)
	}
	if m.IsOwn {
		t.Errorf("item by u2 marked as own")
	}
	if len(m.Attachments) != 1 || m.Attachments[0].Filename != "i.png" {
		t.Errorf("attachments = %+v", m.Attachments)
	}
	if g := m.Reactions["👍"]; g.Count != 2 || len(g.UserIDs) != 2 {
		t.Errorf("👍 group = %+v", g)
	}
	if _, ok := m.Reactions["❤️"]; ok {
		t.Errorf("zero-count reaction kept")
	}
	if m.UserReaction != "👍" {
		t.Errorf("UserReaction = %q, want 👍", m.UserReaction)
	}
}

func TestCreateMessage_SendsBodyAndMarksOwn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/messages" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"message":{
			"id":"m9",
			"author":{"id":"me","username":"self"},
			"content":"posted",
			"createdAt":"2026-08-30T10:00:00Z"
		}}`))
	})

	item, err := NewFeedService(client, "me").CreateMessage(context.Background(), "w1", "posted", nil, []string{"go"})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if item.ID != "m9" || !item.IsOwn {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestToggleLike_ReturnsServerTruth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/messages/m1/like" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"likesCount":7,"hasLiked":false}`))
	})

	likes, liked, err := NewFeedService(client, "me").ToggleLike(context.Background(), "m1")
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if likes != 7 || liked {
		t.Errorf("got likes=%d liked=%v", likes, liked)
	}
}

func TestToggleReaction_FoldsArrayIntoMap(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reactions":[{"emoji":"❤️","count":1,"users":["me"]}]}`))
	})

	reactions, mine, err := NewFeedService(client, "me").ToggleReaction(context.Background(), "m1", "❤️")
	if err != nil {
		t.Fatalf("ToggleReaction: %v", err)
	}
	if g := reactions["❤️"]; g.Count != 1 {
		t.Errorf("❤️ group = %+v", g)
	}
	if mine != "❤️" {
		t.Errorf("user reaction = %q", mine)
	}
}

func TestComments_CarriesParentID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/messages/m1/comments" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"comments":[
			{"id":"c1","author":{"id":"u2","username":"alice"},"content":"root","createdAt":"2026-08-30T10:00:00Z"},
			{"id":"c2","author":{"id":"me","username":"self"},"content":"reply","createdAt":"2026-08-30T10:01:00Z","parentCommentId":"c1"}
		]}`))
	})

	items, err := NewFeedService(client, "me").Comments(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d comments", len(items))
	}
	if items[0].ParentID != "" || items[1].ParentID != "c1" {
		t.Errorf("parent IDs = %q, %q", items[0].ParentID, items[1].ParentID)
	}
	if !items[1].IsOwn {
		t.Errorf("own comment not marked")
	}
}

func TestErrorStatus_SurfacesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"not a member"}`))
	})

	_, err := NewFeedService(client, "me").WallMessages(context.Background(), "w1", 1, 20)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "not a member") {
		t.Errorf("error missing status or body: %v", err)
	}
}

func TestReport_PostsReason(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	if err := NewFeedService(client, "me").Report(context.Background(), "m1", "spam"); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if gotPath != "/api/v1/messages/m1/report" {
		t.Errorf("path = %s", gotPath)
	}
}
