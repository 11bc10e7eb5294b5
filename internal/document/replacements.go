package document

// Replacements is an insertion-ordered token → value map
type Replacements struct {
	tokens []string
	values map[string]string
}

// NewReplacements creates an empty map
func NewReplacements() *Replacements {
	return &Replacements{values: make(map[string]string)}
}

// Set adds or updates a token. Updating keeps the original position.
func (r *Replacements) Set(token, value string) {
	if _, ok := r.values[token]; !ok {
		r.tokens = append(r.tokens, token)
	}
	r.values[token] = value
}

// Get returns the value of a token
func (r *Replacements) Get(token string) (string, bool) {
	v, ok := r.values[token]
	return v, ok
}

// Tokens returns the tokens in insertion order
func (r *Replacements) Tokens() []string {
	out := make([]string, len(r.tokens))
	copy(out, r.tokens)
	return out
}

// Len returns the number of tokens
func (r *Replacements) Len() int {
	return len(r.tokens)
}
