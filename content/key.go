package content

// Key identifies a sound event: the bank (project) that defines it
// plus the event name within that bank. Comparable; used as the cache
// identity by the event factory.
type Key struct {
	Project string
	Name    string
}

// IsZero reports whether the key carries no identity
func (k Key) IsZero() bool {
	return k.Project == "" && k.Name == ""
}

func (k Key) String() string {
	if k.Project == "" {
		return k.Name
	}
	return k.Project + "#" + k.Name
}
