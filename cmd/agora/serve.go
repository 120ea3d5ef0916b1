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
	"github.com/blinklabs-io/agora/internal/config"
	"github.com/blinklabs-io/agora/internal/node"
	"github.com/spf13/cobra"
)

func serveRun(cmd *cobra.Command, _ []string) error {
	cfg := mustConfig(cmd)
	flags := cmd.Flags()
	if dev, _ := flags.GetBool("dev"); dev {
		cfg.RunMode = config.RunModeDev
	}
	if flags.Changed("api-port") {
		port, _ := flags.GetUint("api-port")
		cfg.APIPort = port
	}
	return node.Run(cfg, commonRun())
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().
		Bool("dev", false, "run with funded in-memory collaborators")
	cmd.Flags().
		Uint("api-port", 0, "override the API port (0 disables the API)")
}

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the governance node",
		SilenceUsage: true,
		RunE:         serveRun,
	}
	addServeFlags(cmd)
	return cmd
}
