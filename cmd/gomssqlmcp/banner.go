package main

import (
	"fmt"
	"io"

	"golang.org/x/term"
)

// isTTY returns true if the given file descriptor is a terminal.
func isTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

var bannerLines = []string{
	`                                                              `,
	`   __ _  ___  _ __ ___  ___ ___  __ _ _ __ ___   ___ _ __     `,
	`  / _' |/ _ \| '_ ' _ \/ __/ __|/ _' | '_ ' _ \ / __| '_ \    `,
	` | (_| | (_) | | | | | \__ \__ \ (_| | | | | | | (__| |_) |   `,
	`  \__, |\___/|_| |_| |_|___/___/\__, |_| |_| |_|\___| .__/    `,
	`  |___/                            |_|              |_|       `,
	`                                                              `,
}

// printBanner prints the ASCII art banner, red to yellow when useColor is set.
func printBanner(w io.Writer, useColor bool) {
	if !useColor {
		for _, line := range bannerLines {
			fmt.Fprintln(w, line)
		}
		return
	}

	colors := []string{
		"\033[1;31m", // bold red
		"\033[1;31m",
		"\033[1;91m", // bold bright red
		"\033[1;33m", // bold yellow
		"\033[1;93m", // bold bright yellow
		"\033[1;93m",
		"\033[0m",
	}
	for i, line := range bannerLines {
		fmt.Fprintf(w, "%s%s\033[0m\n", colors[i%len(colors)], line)
	}
}
