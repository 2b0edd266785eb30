package spec

// MergeSpecs overlays non-empty fields of overlay onto a copy of base.
// Neither input is mutated; an overlay with children replaces the whole
// child list rather than splicing.
func MergeSpecs(base, overlay *Spec) *Spec {
	out := base.Clone()
	if out == nil {
		out = &Spec{}
	}
	if overlay == nil {
		return out
	}
	if overlay.RootKey != "" {
		out.RootKey = overlay.RootKey
	}
	if overlay.Layout != "" {
		out.Layout = overlay.Layout
	}
	if overlay.Gap != "" {
		out.Gap = overlay.Gap
	}
	if overlay.Children != nil {
		out.Children = overlay.Clone().Children
	}
	return out
}
