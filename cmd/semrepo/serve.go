package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	rdfexport "github.com/c360studio/semrepo/processor/rdf-export"
	"github.com/c360studio/semstreams/component"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var stream string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serialize published nodes from the graph stream as RDF documents",
		Long: `Serve runs the rdf-export component: every node message arriving on
the graph ingestion subject is rendered in the configured export format
and profile and published to graph.export.rdf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			nc, err := a.connectNATS(ctx)
			if err != nil {
				return err
			}

			cfg := rdfexport.DefaultConfig()
			cfg.Format = a.cfg.Export.Format
			cfg.Profile = a.cfg.Export.Profile
			cfg.BaseIRI = a.cfg.Graph.BaseIRI
			cfg.TypeNamespace = a.cfg.Graph.TypeNamespace
			cfg.Ports.Inputs[0].Subject = a.cfg.Graph.Subject
			if stream != "" {
				cfg.Ports.Inputs[0].StreamName = stream
			}
			raw, err := json.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal component config: %w", err)
			}

			comp, err := rdfexport.NewComponent(raw, component.Dependencies{NATSClient: nc, Logger: a.logger})
			if err != nil {
				return err
			}
			lc, ok := comp.(*rdfexport.Component)
			if !ok {
				return fmt.Errorf("unexpected component type %T", comp)
			}
			if err := lc.Initialize(); err != nil {
				return err
			}
			if err := lc.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			return lc.Stop(5 * time.Second)
		},
	}

	cmd.Flags().StringVar(&stream, "stream", "", "JetStream stream holding the ingestion subject (default GRAPH)")

	return cmd
}
