package transcoder

import (
	"fmt"

	"rpascribe/internal/action"
)

// Human-readable remarks describing each target action's intent, filled
// from the action's own fields.

func remarkOpenTab(url string) string {
	return fmt.Sprintf("Open new tab for %s", url)
}

func remarkNavigate(url string) string {
	return fmt.Sprintf("Navigate to %s", url)
}

func remarkClick(cfg action.ClickConfig) string {
	label := cfg.Text
	if label == "" {
		label = cfg.AriaLabel
	}
	if label == "" {
		label = cfg.Selector
	}
	return fmt.Sprintf("Click on %s", label)
}

func remarkInput(cfg action.InputContentConfig) string {
	content := cfg.Content
	if len(content) > 30 {
		content = content[:30] + "..."
	}
	return fmt.Sprintf("Input %q into %s", content, cfg.Selector)
}

func remarkKey(key string) string {
	return fmt.Sprintf("Press key %s", key)
}

func remarkScroll(direction string, distance int) string {
	if direction == "" {
		direction = "down"
	}
	return fmt.Sprintf("Scroll %s %dpx", direction, distance)
}

func remarkSubmit(url string) string {
	if url == "" {
		return "Submit form"
	}
	return fmt.Sprintf("Submit form to %s", url)
}

func remarkWait(millis int) string {
	return fmt.Sprintf("Wait %dms", millis)
}
