package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-go/v2"
)

const (
	ServerKey = "defaultkey"
	Host      = "127.0.0.1"
	Port      = 7350
)

type TestClient struct {
	Client  *nakama.Client
	Session *nakama.Session
	Socket  *nakama.Socket
	UserID  string
}

func NewTestClient(t *testing.T) *TestClient {
	client := nakama.NewClient(ServerKey, Host, Port, false)

	deviceID := fmt.Sprintf("test_device_%d", time.Now().UnixNano())

	session, err := client.AuthenticateDevice(context.Background(), deviceID, true, "")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	socket := client.NewSocket()
	if err := socket.Connect(context.Background(), session, true); err != nil {
		t.Fatalf("Failed to connect socket: %v", err)
	}

	return &TestClient{
		Client:  client,
		Session: session,
		Socket:  socket,
		UserID:  session.UserId,
	}
}

func (tc *TestClient) Close() {
	if tc.Socket != nil {
		tc.Socket.Close()
	}
}

// QuickMatch calls the 'quick_match' RPC and returns the match ID to join.
func (tc *TestClient) QuickMatch(t *testing.T) string {
	rpc, err := tc.Client.RpcFunc(context.Background(), tc.Session, "quick_match", "{}")
	if err != nil {
		t.Fatalf("RPC quick_match failed: %v", err)
	}

	var resp struct {
		MatchID string `json:"match_id"`
		IsNew   bool   `json:"is_new"`
	}
	if err := json.Unmarshal([]byte(rpc.Payload), &resp); err != nil {
		t.Fatalf("Failed to parse quick_match response: %v", err)
	}
	if resp.MatchID == "" {
		t.Fatal("RPC quick_match returned empty match ID")
	}
	return resp.MatchID
}

// JoinMatchWithDeck joins a match, declaring the given deck in the join metadata.
func (tc *TestClient) JoinMatchWithDeck(t *testing.T, matchID string, deck []map[string]interface{}) {
	deckJSON, err := json.Marshal(deck)
	if err != nil {
		t.Fatalf("Failed to marshal deck: %v", err)
	}

	metadata := map[string]string{
		"deck":   string(deckJSON),
		"userId": tc.UserID,
	}
	if _, err := tc.Socket.JoinMatch(context.Background(), nil, matchID, metadata); err != nil {
		t.Fatalf("Failed to join match %s: %v", matchID, err)
	}
}

// TestDeck builds a minimal legal deck of identical test cards.
func TestDeck(prefix string, size int) []map[string]interface{} {
	deck := make([]map[string]interface{}, 0, size)
	for i := 0; i < size; i++ {
		id := fmt.Sprintf("%s-%d", prefix, i)
		deck = append(deck, map[string]interface{}{
			"card_id": id,
			"card": map[string]interface{}{
				"id":   id,
				"name": "Test Pokemon " + id,
				"hp":   60,
				"attacks": []map[string]interface{}{
					{"name": "Tackle", "damage": 20},
				},
			},
		})
	}
	return deck
}

// WaitForMatchState waits for a specific opcode from the socket.
func (tc *TestClient) WaitForMatchState(t *testing.T, opCode int64, timeout time.Duration) *rtapi.MatchData {
	ch := make(chan *rtapi.MatchData)

	originalHandler := tc.Socket.OnMatchData
	tc.Socket.OnMatchData = func(data *rtapi.MatchData) {
		if data.OpCode == opCode {
			ch <- data
		}
		if originalHandler != nil {
			originalHandler(data)
		}
	}

	select {
	case data := <-ch:
		return data
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for OpCode %d", opCode)
		return nil
	}
}
