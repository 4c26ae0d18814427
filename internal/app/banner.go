package app

import (
	"fmt"
	"io"
	"strings"

	"etenderexport/internal/config"
)

const (
	bannerWidth = 82
	author      = "Created by Zoren Liu"
)

// PrintBanner writes the title block and version history
func PrintBanner(w io.Writer) {
	rule := strings.Repeat("=", bannerWidth)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, center(fmt.Sprintf("%s v%s", config.AppName, config.AppVersion)))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, center(author))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Downloads are saved to folder %s, combined file saved to\n", config.DefaultDownloadDir)
	fmt.Fprintf(w, "folder %s, in current directory.\n", config.DefaultCombinedDir)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Version history:")
	for _, line := range config.VersionHistory {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// PrintClosing writes the final line shown before the exit pause
func PrintClosing(w io.Writer, pause bool) {
	if pause {
		fmt.Fprintln(w, "Exporting complete. Press Enter to exit.")
	} else {
		fmt.Fprintln(w, "Exporting complete.")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", bannerWidth))
}

func center(s string) string {
	pad := (bannerWidth - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
