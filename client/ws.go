// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/vechain/mmrledger/accumulator"
)

var ErrUnexpectedMsg = errors.New("unexpected message")

// EventWrapper carries either a message or the error that ended the subscription.
type EventWrapper[T any] struct {
	Data  T
	Error error
}

// SubscribeRoot streams root updates until ctx is done or the connection fails.
// The first message is the root at subscription time.
func (c *Client) SubscribeRoot(ctx context.Context) (<-chan EventWrapper[*accumulator.RootUpdate], error) {
	u, err := wsURL(c.url, "/mmr/subscriptions/root")
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}
	return subscribe[accumulator.RootUpdate](ctx, conn), nil
}

func subscribe[T any](ctx context.Context, conn *websocket.Conn) <-chan EventWrapper[*T] {
	eventChan := make(chan EventWrapper[*T])
	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	go func() {
		defer close(eventChan)
		defer close(done)

		for {
			var data T
			if err := conn.ReadJSON(&data); err != nil {
				select {
				case eventChan <- EventWrapper[*T]{Error: fmt.Errorf("%w: %w", ErrUnexpectedMsg, err)}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case eventChan <- EventWrapper[*T]{Data: &data}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return eventChan
}
