package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semrepo/graph"
	"github.com/c360studio/semrepo/repository"
)

func publishCmd(flags *globalFlags) *cobra.Command {
	var (
		recursive bool
		include   []string
	)

	cmd := &cobra.Command{
		Use:   "publish [path]",
		Short: "Publish the statements for a subtree to graph ingestion",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := repository.RootPath
			if len(args) == 1 {
				start = args[0]
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			pub, err := a.publisher(ctx)
			if err != nil {
				return err
			}
			nodes, triples, err := a.publishTree(ctx, pub, start, recursive, include)
			if err != nil {
				return err
			}

			a.logger.Info("Publish complete",
				"nodes", nodes,
				"triples", triples,
				"subject", a.cfg.Graph.Subject,
				"destination", a.cfg.Graph.Destination)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Include descendants of path")
	cmd.Flags().StringSliceVar(&include, "include", nil, "Only publish node paths matching these globs")

	return cmd
}

func (a *app) publisher(ctx context.Context) (*graph.Publisher, error) {
	nc, err := a.connectNATS(ctx)
	if err != nil {
		return nil, err
	}
	return a.newPublisher(nc), nil
}

func (a *app) newPublisher(t graph.Transport) *graph.Publisher {
	return graph.NewPublisher(t, a.transform, a.ids, graph.PublisherConfig{
		Subject:     a.cfg.Graph.Subject,
		Destination: a.cfg.Graph.Destination,
		Logger:      a.logger,
	})
}

// publishTree publishes every visited node that has statements.
func (a *app) publishTree(ctx context.Context, pub *graph.Publisher, start string, recursive bool, include []string) (int, int, error) {
	var nodes, triples int
	err := a.walkNodes(ctx, start, recursive, include, func(ctx context.Context, node repository.Node) error {
		if node.IsRoot() {
			return nil
		}
		n, err := pub.PublishNode(ctx, node)
		if err != nil {
			return fmt.Errorf("publish %s: %w", node.Path, err)
		}
		nodes++
		triples += n
		return nil
	})
	return nodes, triples, err
}
