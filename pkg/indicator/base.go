package indicator

// Base carries the visibility and mute bookkeeping every variant shares.
// Variants embed it and drive their rendering through Apply; the actual
// show/hide side effects stay with the variant.
type Base struct {
	visible bool
	muted   bool
}

func (this *Base) Visible() bool {
	return this.visible
}

func (this *Base) Muted() bool {
	return this.muted
}

// Apply reconciles the desired activity with the mute flag. show is only
// called on a hidden-to-visible edge, hide only on the opposite one, so
// repeated identical calls stay no-ops.
func (this *Base) Apply(active bool, show, hide func() error) error {
	target := active && !this.muted

	if target == this.visible {
		return nil
	}

	var err error
	if target {
		if show != nil {
			err = show()
		}
	} else {
		if hide != nil {
			err = hide()
		}
	}
	if err != nil {
		return err
	}

	this.visible = target
	return nil
}

// SetMuted flips the mute flag; the caller follows up with Apply to
// realize the resulting visibility.
func (this *Base) SetMuted(muted bool) {
	this.muted = muted
}
