package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/akilcn01-oss/Inventory-Management/internal/config"
)

// settingsCommand runs synchronously; it never talks to the API.
func settingsCommand(settings *config.Settings, args []string, stdout, stderr io.Writer) int {
	sub := "show"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "show":
		if len(args) != 0 {
			break
		}
		printSettings(settings, stdout)
		return exitOK
	case "set":
		if len(args) != 2 {
			break
		}
		key := strings.ToUpper(strings.TrimSpace(args[0]))
		settings.Set(key, args[1])
		if err := settings.Validate(); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return exitError
		}
		if err := settings.Save(); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return exitError
		}
		fmt.Fprintf(stdout, "%s=%s saved to %s\n", key, args[1], settings.Path())
		return exitOK
	case "reset":
		if len(args) != 0 {
			break
		}
		if err := settings.ResetToDefaults(); err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return exitError
		}
		fmt.Fprintf(stdout, "Settings in %s reset to defaults\n", settings.Path())
		return exitOK
	}

	fmt.Fprintln(stderr, "Usage: inventory-cli settings [show | set KEY VALUE | reset]")
	return exitUsage
}

func printSettings(settings *config.Settings, w io.Writer) {
	values := settings.All()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, values[k])
	}
	_ = tw.Flush()
}
