// Package browse tracks which view is active and what each view shows.
// Loads are described as Requests; the caller performs them and hands the
// outcome back through Complete. Only the latest request issued for a
// panel may change it.
package browse

import (
	"github.com/ssh-vom/anime-browser/internal/providers/anime"
)

type View int

const (
	ViewHome View = iota
	ViewTopTen
	ViewSearch
	ViewRandom
)

var Views = []View{ViewHome, ViewTopTen, ViewSearch, ViewRandom}

func (view View) String() string {
	switch view {
	case ViewTopTen:
		return "top-ten"
	case ViewSearch:
		return "search"
	case ViewRandom:
		return "random"
	default:
		return "home"
	}
}

func (view View) Title() string {
	switch view {
	case ViewTopTen:
		return "Top 10"
	case ViewSearch:
		return "Search"
	case ViewRandom:
		return "Random"
	default:
		return "Home"
	}
}

func ParseView(value string) (View, bool) {
	for _, view := range Views {
		if view.String() == value {
			return view, true
		}
	}
	return ViewHome, false
}

// Target identifies what a Request loads into.
type Target int

const (
	TargetHome Target = iota
	TargetTopTen
	TargetRandom
	TargetDetails
)

func (target Target) String() string {
	switch target {
	case TargetTopTen:
		return "top-ten"
	case TargetRandom:
		return "random"
	case TargetDetails:
		return "details"
	default:
		return "home"
	}
}

type Request struct {
	Target Target
	Seq    uint64
	Period anime.Period
	ID     string
}

// Result is the outcome of a Request. Items is used by list targets and
// Detail by detail targets.
type Result struct {
	Items  []anime.Summary
	Detail *anime.Detail
	Err    error
}

type Panel struct {
	Loading bool
	Err     error
	Items   []anime.Summary
	Detail  *anime.Detail
	Loaded  bool

	seq uint64
}

// Modal is the detail overlay.
type Modal struct {
	Panel
	Open bool
	ID   string
}

type Controller struct {
	active View
	period anime.Period
	seq    uint64

	home   Panel
	topTen Panel
	random Panel
	modal  Modal
}

func NewController() *Controller {
	return &Controller{active: ViewHome, period: anime.PeriodToday}
}

func (controller *Controller) Active() View         { return controller.active }
func (controller *Controller) Period() anime.Period { return controller.period }
func (controller *Controller) Modal() Modal         { return controller.modal }

func (controller *Controller) Panel(target Target) Panel {
	if panel := controller.panel(target); panel != nil {
		return *panel
	}
	return Panel{}
}

// Activate switches to view. Home and top-ten return a load request every
// time they are entered; search and random wait for user action.
func (controller *Controller) Activate(view View) (Request, bool) {
	controller.active = view

	switch view {
	case ViewHome:
		return controller.start(TargetHome, Request{}), true
	case ViewTopTen:
		return controller.start(TargetTopTen, Request{Period: controller.period}), true
	default:
		return Request{}, false
	}
}

// SelectPeriod changes the top-ten filter. Re-selecting the current period
// does nothing.
func (controller *Controller) SelectPeriod(period anime.Period) (Request, bool) {
	if period == "" || period == controller.period {
		return Request{}, false
	}
	controller.period = period
	return controller.start(TargetTopTen, Request{Period: period}), true
}

// Reload repeats the load of the active view, if it has one.
func (controller *Controller) Reload() (Request, bool) {
	switch controller.active {
	case ViewRandom:
		return controller.Roll(), true
	case ViewSearch:
		return Request{}, false
	default:
		return controller.Activate(controller.active)
	}
}

func (controller *Controller) Roll() Request {
	return controller.start(TargetRandom, Request{})
}

func (controller *Controller) OpenDetails(id string) (Request, bool) {
	if id == "" {
		return Request{}, false
	}
	controller.modal.Open = true
	controller.modal.ID = id
	return controller.start(TargetDetails, Request{ID: id}), true
}

// CloseDetails hides the overlay. A details load still in flight is
// discarded when it completes.
func (controller *Controller) CloseDetails() {
	controller.modal = Modal{Panel: Panel{seq: controller.bump()}}
}

// Complete applies result if req is the newest request for its target and
// reports whether it did.
func (controller *Controller) Complete(req Request, result Result) bool {
	panel := controller.panel(req.Target)
	if panel == nil || req.Seq != panel.seq {
		return false
	}
	if req.Target == TargetDetails && !controller.modal.Open {
		return false
	}

	panel.Loading = false
	panel.Loaded = true
	panel.Err = result.Err
	if result.Err != nil {
		panel.Items = nil
		panel.Detail = nil
		return true
	}
	panel.Items = result.Items
	panel.Detail = result.Detail
	return true
}

func (controller *Controller) start(target Target, req Request) Request {
	req.Target = target
	req.Seq = controller.bump()

	panel := controller.panel(target)
	*panel = Panel{Loading: true, seq: req.Seq}
	return req
}

func (controller *Controller) bump() uint64 {
	controller.seq++
	return controller.seq
}

func (controller *Controller) panel(target Target) *Panel {
	switch target {
	case TargetHome:
		return &controller.home
	case TargetTopTen:
		return &controller.topTen
	case TargetRandom:
		return &controller.random
	case TargetDetails:
		return &controller.modal.Panel
	default:
		return nil
	}
}
