package playback

import "sync"

// Controls is the state owned by the control panel and handed down to the
// player as read-only input.
type Controls struct {
	Playing bool  `json:"playing"`
	Speed   Speed `json:"speed"`
}

// Panel is the control panel: a play/pause toggle and a speed slider.
type Panel struct {
	mu    sync.Mutex
	state Controls
	sink  func(Controls)
}

// NewPanel returns a paused panel at DefaultSpeed. sink receives every
// change, including the initial state; it may be nil.
func NewPanel(sink func(Controls)) *Panel {
	p := &Panel{
		state: Controls{Playing: false, Speed: DefaultSpeed},
		sink:  sink,
	}
	if sink != nil {
		sink(p.state)
	}
	return p
}

func (p *Panel) State() Controls {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Toggle inverts Playing.
func (p *Panel) Toggle() Controls {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Playing = !p.state.Playing
	p.push()
	return p.state
}

// SetPlaying sets Playing explicitly. Setting the current value is a no-op.
func (p *Panel) SetPlaying(playing bool) Controls {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Playing == playing {
		return p.state
	}
	p.state.Playing = playing
	p.push()
	return p.state
}

// SetSpeed stores a slider value. Values the slider cannot produce are
// rejected with ErrInvalidSpeed and leave the state unchanged.
func (p *Panel) SetSpeed(v float64) (Controls, error) {
	s, err := ParseSpeed(v)
	if err != nil {
		return p.State(), err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Speed = s
	p.push()
	return p.state, nil
}

// push runs with p.mu held so the sink observes changes in order.
func (p *Panel) push() {
	if p.sink != nil {
		p.sink(p.state)
	}
}
