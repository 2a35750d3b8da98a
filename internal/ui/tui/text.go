package tui

import "strings"

func truncateText(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if len(text) <= width {
		return text
	}
	if width <= 3 {
		return text[:width]
	}
	return text[:width-3] + "..."
}

// wrapText wraps text into at most maxLines lines of the given width.
// Words longer than a line, such as file paths, are hard-broken; when
// the content overflows, the last line is truncated with an ellipsis.
func wrapText(text string, width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return nil
	}

	words := strings.Fields(strings.ReplaceAll(text, "\n", " "))
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var line strings.Builder
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
	}

	for _, word := range words {
		for len(word) > width {
			if line.Len() > 0 {
				flush()
			}
			line.WriteString(word[:width])
			flush()
			word = word[width:]
		}
		if word == "" {
			continue
		}
		switch {
		case line.Len() == 0:
			line.WriteString(word)
		case line.Len()+1+len(word) > width:
			flush()
			line.WriteString(word)
		default:
			line.WriteByte(' ')
			line.WriteString(word)
		}
	}
	if line.Len() > 0 {
		flush()
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = truncateText(lines[maxLines-1]+"...", width)
	}
	return lines
}

// padLines extends lines with blanks up to count so panels keep a fixed
// height.
func padLines(lines []string, count int) []string {
	for len(lines) < count {
		lines = append(lines, "")
	}
	return lines
}
