// Package cli provides the configuration and terminal helpers of the
// meetpilot command.
//
// Configuration is stored in ~/.meetpilot/config.yaml. Values from .env
// files and the environment override the file:
//
//	cfg, err := cli.LoadConfig("")
//	cfg.ApplyEnv(os.LookupEnv)
//
//	p := &cli.Printer{JSON: true}
//	p.Print(agenda)
package cli
