package rules

// CodePart returns line up to its trailing # comment. Quoted strings and
// #{...} interpolation are not comments.
func CodePart(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			if i+1 < len(line) && line[i+1] == '{' {
				continue
			}
			return line[:i]
		}
	}
	return line
}
