package parser

// The lookahead/lookback engine exists because several log shapes are split
// across 2-3 consecutive lines with no back-reference: a critical-hit marker
// carries no target or amount, and damage-shield attribution needs both the
// effect flavor line and the melee swing that triggered it. All scans skip
// chat-spam lines so disambiguation never sees irrelevant noise.

// lookAhead peeks at the n-th non-spam line after the cursor without moving
// the cursor. ok is false past the end of the buffer.
func (p *Parser) lookAhead(n int) (line string, ok bool) {
	_, line, ok = p.scanAhead(n)
	return line, ok
}

// skipAhead is lookAhead(n) plus cursor advancement: the returned line will
// not be independently re-handled by the main loop.
func (p *Parser) skipAhead(n int) (line string, ok bool) {
	idx, line, ok := p.scanAhead(n)
	if ok {
		p.cursor = idx
	}
	return line, ok
}

func (p *Parser) scanAhead(n int) (idx int, line string, ok bool) {
	if n <= 0 {
		return 0, "", false
	}
	seen := 0
	for i := p.cursor + 1; i < len(p.lines); i++ {
		_, msg, isLine := splitLine(p.lines[i])
		if !isLine || p.spam.Matches(msg) {
			continue
		}
		seen++
		if seen == n {
			return i, p.lines[i], true
		}
	}
	return 0, "", false
}

// lookBack scans backward from just before the cursor, collecting non-spam
// lines whose own timestamp is at or after the given timestamp, in
// reverse-chronological order. Used to check whether a kill landed in the
// same second as an otherwise-unattributable critical hit.
func (p *Parser) lookBack(tsMillis int64) []string {
	var out []string
	for i := p.cursor - 1; i >= 0; i-- {
		ts, msg, isLine := splitLine(p.lines[i])
		if !isLine || p.spam.Matches(msg) {
			continue
		}
		if ts < tsMillis {
			break
		}
		out = append(out, p.lines[i])
	}
	return out
}
