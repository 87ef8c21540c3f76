// Package pages holds the full-page views
package pages

import (
	"kjsb_flow_app_go/services/geo"
	"kjsb_flow_app_go/templates/components"
	"kjsb_flow_app_go/templates/partials"

	"github.com/a-h/templ"
)

// MapPageData is the view model of the map page
type MapPageData struct {
	components.Chrome
	Nama string
	// ZoomTo is the one-shot ?zoomTo= code; ZoomBounds is nil when the case
	// has no geometry, in which case ZoomMissing is set.
	ZoomTo      string
	ZoomBounds  *[2][2]float64
	ZoomFit     geo.FitOptions
	ZoomMissing bool
	// ZoomOnce is set once the bounds were found; map.js then drops
	// ?zoomTo= from the address so a reload does not zoom again
	ZoomOnce bool
}

// StagePageData is the view model of /tahap/:tahap
type StagePageData struct {
	components.Chrome
	Stage       int
	Description string
	Kode        string
	Form        *partials.StageFormData
	Message     *partials.Message
}

// LoginPageData is the view model of the office login page
type LoginPageData struct {
	components.Chrome
	Message *partials.Message
}

// Map renders the map page
func Map(data MapPageData) templ.Component {
	data.Active = "map"
	if data.ZoomTo != "" {
		data.ZoomFit = geo.ZoomToFit
	}
	return mapPage(data)
}

// Stage renders a stage page
func Stage(data StagePageData) templ.Component {
	data.Active = components.StageNav(data.Stage)
	return stagePage(data)
}

// Login renders the login page
func Login(data LoginPageData) templ.Component {
	data.Bare = true
	return loginPage(data)
}
