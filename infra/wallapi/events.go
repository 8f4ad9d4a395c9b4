package wallapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"wallterm/app"
)

type eventStream struct {
	client        *Client
	currentUserID string
}

// NewEventStream creates the wall server implementation of app.EventStream.
func NewEventStream(client *Client, currentUserID string) app.EventStream {
	return &eventStream{client: client, currentUserID: currentUserID}
}

// rawEvent is one line of the server's push event stream.
type rawEvent struct {
	Type      string      `json:"type"`
	WallID    string      `json:"wallId"`
	Message   *rawMessage `json:"message"`
	MessageID string      `json:"messageId"`
	VideoID   string      `json:"videoId"`
	HLSPath   string      `json:"hlsPath"`
	Caller    string      `json:"caller"`
}

// Subscribe opens a long-lived line-JSON stream of wall events. The returned
// channel closes when ctx is cancelled or the server ends the stream.
func (s *eventStream) Subscribe(ctx context.Context, wallID string) (<-chan app.Event, error) {
	path := "/api/v1/walls/" + url.PathEscape(wallID) + "/events"
	req, err := s.client.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("opening event stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API GET %s returned %d: %s", path, resp.StatusCode, string(data))
	}

	ch := make(chan app.Event)
	go s.pump(ctx, resp.Body, ch)
	return ch, nil
}

func (s *eventStream) pump(ctx context.Context, body io.ReadCloser, ch chan<- app.Event) {
	defer close(ch)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw rawEvent
		if err := json.Unmarshal(line, &raw); err != nil {
			continue
		}

		ev := app.Event{
			Type:      app.EventType(raw.Type),
			WallID:    raw.WallID,
			MessageID: raw.MessageID,
			VideoID:   raw.VideoID,
			HLSPath:   raw.HLSPath,
			Caller:    raw.Caller,
		}
		if raw.Message != nil {
			ev.Message = raw.Message.toItem(s.currentUserID)
		}

		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}
