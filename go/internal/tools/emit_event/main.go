package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcdev12/turntimer/go/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const usage = `usage: emit_event <encounter-id> <command> [arg]

commands:
  turn <participant-id>   TurnChanged (omit the id for a turn with no participant)
  pause | resume          PauseChanged
  end                     EncounterEnded
  render                  RenderRequested`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	encounterID, command := os.Args[1], os.Args[2]
	arg := ""
	if len(os.Args) > 3 {
		arg = os.Args[3]
	}

	env, err := buildEnvelope(encounterID, command, arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n%s\n", err, usage)
		os.Exit(2)
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}
	nc, err := nats.Connect(natsURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to NATS: %v\n", err)
		os.Exit(1)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create JetStream context: %v\n", err)
		os.Exit(1)
	}

	data, err := json.Marshal(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal envelope: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ack, err := js.Publish(ctx, events.Subject(env.EventType), data, jetstream.WithMsgID(env.EventID))
	if err != nil {
		fmt.Fprintf(os.Stderr, "publish: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Published %s for %s (stream %s, seq %d)\n", env.EventType, encounterID, ack.Stream, ack.Sequence)
}

func buildEnvelope(encounterID, command, arg string) (*events.Envelope, error) {
	now := time.Now().UTC()
	switch command {
	case "turn":
		return events.NewEnvelope(events.EventTypeTurnChanged, encounterID, events.TurnChangedPayload{ParticipantID: arg, ChangedAt: now})
	case "pause", "resume":
		return events.NewEnvelope(events.EventTypePauseChanged, encounterID, events.PauseChangedPayload{Paused: command == "pause", ChangedAt: now})
	case "end":
		return events.NewEnvelope(events.EventTypeEncounterEnded, encounterID, events.EncounterEndedPayload{EndedAt: now})
	case "render":
		return events.NewEnvelope(events.EventTypeRenderRequested, encounterID, events.RenderRequestedPayload{RequestedAt: now})
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}
