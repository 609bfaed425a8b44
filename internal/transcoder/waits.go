package transcoder

// Smart-wait tuning for the optional second pass.
const (
	smartNavWaitMinMillis = 4000
	smartNavWaitMaxMillis = 9000
	smartTypeSwitchMillis = 1500
)

// InsertSmartWaits runs the optional second pass over an already-mapped
// target sequence, padding boundaries the gap pass left bare: a
// navigation-like action followed by anything gets a long wait, a switch
// between action types a medium one. Boundaries already separated by a
// wait are left alone, which makes the pass idempotent.
func (t *Transcoder) InsertSmartWaits(targets []TargetAction) []TargetAction {
	if len(targets) < 2 {
		return targets
	}

	out := make([]TargetAction, 0, len(targets)+4)
	out = append(out, targets[0])
	for i := 1; i < len(targets); i++ {
		prev := targets[i-1]
		cur := targets[i]

		if prev.Type == TargetWaitTime || cur.Type == TargetWaitTime {
			out = append(out, cur)
			continue
		}

		switch {
		case prev.Type == TargetNewPage || prev.Type == TargetGotoURL:
			out = append(out, t.waitBand(smartNavWaitMinMillis, smartNavWaitMaxMillis, "Wait after navigation"))
		case prev.Type != cur.Type:
			out = append(out, TargetAction{
				Type: TargetWaitTime,
				Config: WaitTimeConfig{
					TimeoutType: WaitFixed,
					Timeout:     smartTypeSwitchMillis,
					Remark:      remarkWait(smartTypeSwitchMillis),
				},
			})
		}
		out = append(out, cur)
	}
	return out
}
