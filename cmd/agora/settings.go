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
	"text/tabwriter"

	"github.com/blinklabs-io/agora"
	"github.com/spf13/cobra"
)

func settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect the governance settings store",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every setting with its current value and impact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := commonRun()
			return withNode(cmd, logger, func(_ context.Context, n *agora.Node) error {
				settings, err := n.Settings().List(nil)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tVALUE\tIMPACT")
				for _, s := range settings {
					fmt.Fprintf(w, "%s\t%s\t%d\n", s.Name, s.Value.String(), s.Impact)
				}
				return w.Flush()
			})
		},
	})
	return cmd
}
