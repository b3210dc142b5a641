// chat-bot is a scripted smoke-test client: it queues for a match, trades a
// few canned lines and guesses at random.
package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type Outbound struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Verdict string `json:"verdict,omitempty"`
}

type NewMessage struct {
	Type     string `json:"type"`
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
}

var lines = []string{
	"hey",
	"not much, just killing time. you?",
	"ha, same here honestly",
	"so what do you usually do on weekends?",
	"nice. ok real question, cats or dogs?",
}

func main() {
	wsURL := getenv("WS_URL", "ws://localhost:8080/ws")
	token := getenv("TOKEN", "")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	send(conn, Outbound{Type: "join-queue"})

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	next := 0
	selfID := ""
	lastSent := ""
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}
		switch base.Type {
		case "session-started":
			next = 0
			selfID = ""
			lastSent = lines[next]
			send(conn, Outbound{Type: "send-message", Content: lastSent})
			next++
		case "new-message":
			var msg NewMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			// The server echoes our own messages back; learn our id from
			// the first echo and ignore ourselves after that.
			if selfID == "" && msg.Content == lastSent {
				selfID = msg.SenderID
			}
			if msg.SenderID == selfID {
				continue
			}
			if next >= len(lines) {
				verdict := "human"
				if rnd.Intn(2) == 0 {
					verdict = "synthetic"
				}
				send(conn, Outbound{Type: "make-guess", Verdict: verdict})
				continue
			}
			time.Sleep(time.Duration(500+rnd.Intn(1500)) * time.Millisecond)
			lastSent = lines[next]
			send(conn, Outbound{Type: "send-message", Content: lastSent})
			next++
		case "session-result":
			log.Printf("result: %s", data)
		case "session-ended":
			log.Printf("ended: %s", data)
			send(conn, Outbound{Type: "join-queue"})
		}
	}
}

func send(conn *websocket.Conn, msg Outbound) {
	payload, _ := json.Marshal(msg)
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
