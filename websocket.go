package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeTimeoutDuration = 5 * time.Second

// StreamMessage is one frame of the event stream. The first frame is always
// a hello carrying the runner state; every later one carries an event.
type StreamMessage struct {
	Type  string    `json:"type"`
	State string    `json:"state,omitempty"`
	Event *RunEvent `json:"event,omitempty"`
}

func createWebsocketHandler(runner *Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("websocket upgrade failed: %s", err), http.StatusInternalServerError)
			return
		}
		defer c.Close(websocket.StatusInternalError, "the sky is falling")

		// clients never send anything; this also notices when they leave
		ctx := c.CloseRead(r.Context())

		unsub, ch := runner.Subscribe()
		defer unsub()

		if err := writeTimeout(ctx, writeTimeoutDuration, c, StreamMessage{Type: "hello", State: runner.State()}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				log.Debug().Msg("Websocket client went away")
				return

			case <-runner.Done():
				c.Close(websocket.StatusGoingAway, "runner stopped")
				return

			case ev, ok := <-ch:
				if !ok {
					c.Close(websocket.StatusNormalClosure, "")
					return
				}
				if err := writeTimeout(ctx, writeTimeoutDuration, c, StreamMessage{Type: "run", Event: &ev}); err != nil {
					log.Debug().Err(err).Msg("Websocket write failed")
					return
				}
			}
		}
	}
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return wsjson.Write(ctx, c, msg)
}
