package main

import (
	"fmt"
	"io"
	"strings"

	"gregoryjjb/ringtool/puzzles"
)

// PrintAnswer writes format to w, replacing each {} with the matching value
// highlighted. Missing values leave the placeholder empty.
func PrintAnswer(w io.Writer, noColor bool, format string, values ...any) error {
	var sb strings.Builder
	parts := strings.Split(format, "{}")
	for i, part := range parts {
		sb.WriteString(colorize(part, colorLightWhite, noColor))
		if i == len(parts)-1 {
			break
		}
		if i < len(values) {
			v := colorize(values[i], colorYellow, noColor)
			if !noColor {
				v = colorize(colorize(v, colorBlink, false), colorBold, false)
			}
			sb.WriteString(v)
		}
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}

func PrintPuzzles(w io.Writer, noColor bool, config *Config) error {
	for _, pz := range puzzles.All() {
		params := pz.Defaults.Merge(config.PuzzleDefaults(pz.Name))
		if _, err := fmt.Fprintf(w, "%s %s\n%10s %s\n",
			colorize(fmt.Sprintf("%-10s", pz.Name), colorBold, noColor), pz.Description,
			"", colorize(params.String(), colorDarkGray, noColor),
		); err != nil {
			return err
		}
	}
	return nil
}
