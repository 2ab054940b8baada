// Package cli provides common CLI utilities for the solarisin command-line
// tools.
//
// This package includes:
//   - YAML configuration files under os.UserConfigDir()
//   - Output formatting (YAML, JSON, table, raw, MessagePack) with optional
//     jq filtering
//   - Request file loading (YAML/JSON)
//   - Byte, rate and duration formatting
//
// Example usage:
//
//	path, err := cli.ConfigPath("qstream", "QSTREAM_CONFIG_DIR")
//	var cfg MyConfig
//	found, err := cli.LoadConfig(path, &cfg)
//
//	// Output result
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    Query:  ".throughput",
//	})
package cli
