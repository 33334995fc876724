package proto

// MatchMask reports whether s matches an IRC hostmask pattern. '*' matches
// any run of characters, '?' matches exactly one. Matching is done on the
// case-folded forms of both pattern and subject.
func MatchMask(mask, s string) bool {
	return matchFolded(string(Fold(mask)), string(Fold(s)))
}

// matchFolded is the glob matcher from Go's path.Match, restricted to the
// '*' and '?' metacharacters hostmasks use.
func matchFolded(pattern, s string) bool {
pattern:
	for len(pattern) > 0 {
		var star bool
		var chunk string
		star, chunk, pattern = scanChunk(pattern)
		if star && chunk == "" {
			return true
		}
		rest, ok := matchChunk(chunk, s)
		if ok && (len(rest) == 0 || len(pattern) > 0) {
			s = rest
			continue
		}
		if star {
			for i := 0; i < len(s); i++ {
				rest, ok := matchChunk(chunk, s[i+1:])
				if ok {
					if len(pattern) == 0 && len(rest) > 0 {
						continue
					}
					s = rest
					continue pattern
				}
			}
		}
		return false
	}
	return len(s) == 0
}

func scanChunk(pattern string) (star bool, chunk, rest string) {
	for len(pattern) > 0 && pattern[0] == '*' {
		pattern = pattern[1:]
		star = true
	}
	i := 0
	for i < len(pattern) && pattern[i] != '*' {
		i++
	}
	return star, pattern[:i], pattern[i:]
}

func matchChunk(chunk, s string) (rest string, ok bool) {
	for len(chunk) > 0 {
		if len(s) == 0 {
			return "", false
		}
		if chunk[0] != '?' && chunk[0] != s[0] {
			return "", false
		}
		s = s[1:]
		chunk = chunk[1:]
	}
	return s, true
}
