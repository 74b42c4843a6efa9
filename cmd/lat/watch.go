package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/lattice/internal/config"
	"github.com/alfredjeanlab/lattice/internal/events"
	"github.com/alfredjeanlab/lattice/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Tail change events from the bus",
	GroupID: "views",
	Args:    cobra.NoArgs,
	// Override PersistentPreRunE: tailing the bus needs no store, and the
	// embedded store must stay free for whichever process is writing.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColorFlag || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		graphID, _ := cmd.Flags().GetString("graph")
		topic, _ := cmd.Flags().GetString("topic")

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if p := activeProfile(); p.NATSURL != "" && os.Getenv("LATTICE_NATS_URL") == "" {
			cfg.NATSURL = p.NATSURL
		}
		if cfg.NATSURL == "" {
			return fmt.Errorf("watch requires LATTICE_NATS_URL or a profile with a NATS URL")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sub, err := events.NewNATSSubscriber(cfg.NATSURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Printf("nats: disconnected: %v", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats: reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				if graphID != "" && !slices.Contains(eventGraphIDs(msg.Data), graphID) {
					continue
				}
				printEvent(msg)
			}
		}
	},
}

// eventGraphIDs extracts the graph ids an event payload refers to. Copy
// events name two graphs; every other event names one.
func eventGraphIDs(data []byte) []string {
	var env struct {
		GraphID       string `json:"graph_id"`
		SourceGraphID string `json:"source_graph_id"`
		Graph         *struct {
			ID string `json:"id"`
		} `json:"graph"`
		Node *struct {
			GraphID string `json:"graph_id"`
		} `json:"node"`
		Edge *struct {
			GraphID string `json:"graph_id"`
		} `json:"edge"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}

	var ids []string
	if env.GraphID != "" {
		ids = append(ids, env.GraphID)
	}
	if env.SourceGraphID != "" {
		ids = append(ids, env.SourceGraphID)
	}
	if env.Graph != nil && env.Graph.ID != "" {
		ids = append(ids, env.Graph.ID)
	}
	if env.Node != nil && env.Node.GraphID != "" {
		ids = append(ids, env.Node.GraphID)
	}
	if env.Edge != nil && env.Edge.GraphID != "" {
		ids = append(ids, env.Edge.GraphID)
	}
	return ids
}

// printEvent writes one event as a single line.
func printEvent(msg events.Message) {
	if jsonOutput {
		line, err := json.Marshal(struct {
			Topic string          `json:"topic"`
			Event json.RawMessage `json:"event"`
		}{Topic: msg.Topic, Event: msg.Data})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
			return
		}
		fmt.Println(string(line))
		return
	}
	ts := time.Now().Format("15:04:05")
	fmt.Printf("%s %s %s\n", ui.RenderMuted(ts), ui.RenderAccent(msg.Topic), msg.Data)
}

func init() {
	watchCmd.Flags().String("graph", "", "only show events touching this graph id")
	watchCmd.Flags().String("topic", "lattice.>", "event subject to subscribe to")
}
