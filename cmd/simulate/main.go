package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Synthetic traffic generator: plays scripted WhatsApp conversations against
// the ingest API so the pipeline can be watched end to end without a real
// connector. Each scenario is one sender; lines are sent with small gaps to
// mimic typing.

type inboundMessage struct {
	Id           string `json:"id"`
	SenderId     string `json:"sender_id"`
	SenderNumber string `json:"sender_number"`
	PushName     string `json:"push_name"`
	Text         string `json:"text"`
	Timestamp    int64  `json:"timestamp"`
}

type scenario struct {
	name         string
	senderNumber string
	pushName     string
	lines        []string
}

var scenarios = []scenario{
	{
		name:         "clean lead",
		senderNumber: "919876543210",
		pushName:     "Rahul",
		lines: []string{
			"hi",
			"Rahul Sharma",
			"9876543210",
			"Flat 302 Green Heights Sector 12 Gurgaon",
		},
	},
	{
		name:         "chatty lead",
		senderNumber: "919123456789",
		pushName:     "Anita",
		lines: []string{
			"Good Morning",
			"I saw your ad for broadband",
			"Anita Kumari",
			"my number is below",
			"+91 91234 56789",
		},
	},
	{
		name:         "aggregator channel (two people, one number)",
		senderNumber: "918888777666",
		pushName:     "Kirana Store",
		lines: []string{
			"Suresh Patel",
			"9888877766",
			// Second person starts here: duplicate mobile slot forces a
			// new session server-side.
			"9777766655",
			"Mahesh Patel",
		},
	},
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:3000", "pipeline API base URL")
	gap := flag.Duration("gap", 800*time.Millisecond, "delay between messages of one sender")
	flag.Parse()

	header := color.New(color.FgCyan, color.Bold)
	userLine := color.New(color.FgGreen)
	errLine := color.New(color.FgRed)

	header.Println("=== WhatsApp Pipeline Traffic Simulator ===")
	fmt.Printf("Target: %s\n", *baseURL)

	for _, sc := range scenarios {
		header.Printf("\n--- %s (%s) ---\n", sc.name, sc.senderNumber)
		for _, line := range sc.lines {
			msg := inboundMessage{
				Id:           uuid.NewString(),
				SenderId:     sc.senderNumber + "@s.whatsapp.net",
				SenderNumber: sc.senderNumber,
				PushName:     sc.pushName,
				Text:         line,
				Timestamp:    time.Now().UnixMilli(),
			}
			userLine.Printf("%s: %s\n", sc.pushName, line)
			if err := post(*baseURL+"/api/connector/v1/messages", msg); err != nil {
				errLine.Printf("send failed: %v\n", err)
			}
			time.Sleep(*gap)
		}
	}

	header.Println("\nAll scenarios sent. Watch /api/pipeline/ws or the results endpoints.")
}

func post(url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func init() {
	log.SetFlags(0)
}
