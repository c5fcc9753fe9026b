package ledger

import "encoding/json"

// AnonymousName is shown in place of an author who chose anonymity.
const AnonymousName = "Anonymous"

// Display is how an author appears to readers: either Anonymous or a
// resolved name. The underlying author id is kept separately and never
// affected by it.
type Display struct {
	anonymous bool
	name      string
}

// Anonymous hides the author.
func Anonymous() Display { return Display{anonymous: true} }

// Named shows the author by name.
func Named(name string) Display { return Display{name: name} }

// IsAnonymous reports whether the author is hidden.
func (d Display) IsAnonymous() bool { return d.anonymous }

// String returns the text readers see.
func (d Display) String() string {
	if d.anonymous {
		return AnonymousName
	}
	return d.name
}

// MarshalJSON renders the display as {"name": "..."}.
func (d Display) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name string `json:"name"`
	}{d.String()})
}

// displayFor applies the anonymity flag at render time.
func displayFor(anonymous bool, name string) Display {
	if anonymous {
		return Anonymous()
	}
	if name == "" {
		name = "Unknown"
	}
	return Named(name)
}
