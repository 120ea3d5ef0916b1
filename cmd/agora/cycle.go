// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/agora"
	"github.com/blinklabs-io/agora/internal/node"
	"github.com/spf13/cobra"
)

// withNode opens the node described by the loaded config, runs fn and
// closes it again
func withNode(
	cmd *cobra.Command,
	logger *slog.Logger,
	fn func(context.Context, *agora.Node) error,
) (err error) {
	cfg := mustConfig(cmd)
	// The one-shot commands never serve the API
	oneShot := *cfg
	oneShot.APIPort = 0
	n, err := node.New(&oneShot, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := n.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}()
	if err := n.Init(); err != nil {
		return err
	}
	return fn(cmd.Context(), n)
}

func cycleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Drive the governance cycle manually",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "advance",
			Short: "Start a new cycle and evaluate the proposals of the previous one",
			RunE: func(cmd *cobra.Command, _ []string) error {
				logger := commonRun()
				return withNode(cmd, logger, func(ctx context.Context, n *agora.Node) error {
					if err := n.AdvanceCycle(ctx); err != nil {
						return fmt.Errorf("advance cycle: %w", err)
					}
					return printCycle(cmd, n)
				})
			},
		},
		&cobra.Command{
			Use:   "decay",
			Short: "Apply any elapsed voice decay intervals",
			RunE: func(cmd *cobra.Command, _ []string) error {
				logger := commonRun()
				return withNode(cmd, logger, func(ctx context.Context, n *agora.Node) error {
					if err := n.DecayVoices(ctx); err != nil {
						return fmt.Errorf("decay voices: %w", err)
					}
					return printCycle(cmd, n)
				})
			},
		},
	)
	return cmd
}

func printCycle(cmd *cobra.Command, n *agora.Node) error {
	state, err := n.Engine().CycleState()
	if err != nil {
		return err
	}
	fmt.Fprintf(
		cmd.OutOrStdout(),
		"cycle %d started at %d, last decay at %d\n",
		state.Cycle,
		state.CycleStartedAt,
		state.LastDecayAt,
	)
	return nil
}
