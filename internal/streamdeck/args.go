package streamdeck

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
)

// Info is the -info JSON the deck passes at launch.
type Info struct {
	Application struct {
		Language string `json:"language"`
		Platform string `json:"platform"`
		Version  string `json:"version"`
	} `json:"application"`
	Plugin struct {
		UUID    string `json:"uuid"`
		Version string `json:"version"`
	} `json:"plugin"`
	Devices []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type int    `json:"type"`
	} `json:"devices"`
}

// LaunchArgs are the command-line arguments the deck launches a plugin with:
//
//	-port 28196 -pluginUUID <uuid> -registerEvent registerPlugin -info <json>
type LaunchArgs struct {
	Port          int
	PluginUUID    string
	RegisterEvent string
	Info          Info
}

// ParseArgs parses plugin launch arguments (without the program name).
func ParseArgs(args []string) (*LaunchArgs, error) {
	fs := flag.NewFlagSet("ofsdplugin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var la LaunchArgs
	var info string
	fs.IntVar(&la.Port, "port", 0, "deck websocket port")
	fs.StringVar(&la.PluginUUID, "pluginUUID", "", "plugin instance UUID")
	fs.StringVar(&la.RegisterEvent, "registerEvent", "", "registration event name")
	fs.StringVar(&info, "info", "", "deck info JSON")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("invalid launch arguments: %w", err)
	}
	if la.Port <= 0 || la.Port > 65535 {
		return nil, fmt.Errorf("invalid or missing -port: %d", la.Port)
	}
	if la.PluginUUID == "" {
		return nil, fmt.Errorf("missing -pluginUUID")
	}
	if la.RegisterEvent == "" {
		return nil, fmt.Errorf("missing -registerEvent")
	}
	if info != "" {
		if err := json.Unmarshal([]byte(info), &la.Info); err != nil {
			return nil, fmt.Errorf("invalid -info JSON: %w", err)
		}
	}
	return &la, nil
}
