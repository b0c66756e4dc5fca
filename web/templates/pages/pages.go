// Package pages renders the site's HTML pages.
package pages

import (
	"embed"
	"html/template"
	"time"

	"github.com/a-h/templ"
	"github.com/jon4hz/folio/internal/config"
	"github.com/jon4hz/folio/internal/forms"
	"github.com/jon4hz/folio/web/templates/components"
)

//go:embed html/*.html
var htmlFS embed.FS

const layoutFile = "html/layout.html"

var pages = map[string]*template.Template{}

func init() {
	layout := template.Must(template.New("").Funcs(components.FuncMap()).ParseFS(htmlFS, layoutFile))
	for _, name := range []string{
		"index.html",
		"about.html",
		"contact.html",
		"resume.html",
		"signup.html",
		"login.html",
		"landing.html",
		"pending.html",
	} {
		pages[name] = template.Must(template.Must(layout.Clone()).ParseFS(htmlFS, "html/"+name))
	}
}

// TODO: port html/*.html to .templ files and render the generated components instead of FromGoHTML.
func render(name string, data any) templ.Component {
	return templ.FromGoHTML(pages[name].Lookup("layout"), data)
}

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// Base holds the values every page needs.
type Base struct {
	Title     string
	Flashes   []Flash
	CSRFToken string
	LoggedIn  bool
}

type ContactData struct {
	Base
	Form   forms.Contact
	Errors forms.FieldErrors
}

type SignUpData struct {
	Base
	Form   forms.SignUp
	Errors forms.FieldErrors
}

type LoginData struct {
	Base
	Form   forms.Login
	Errors forms.FieldErrors
}

type ResumeData struct {
	Base
	Resume *config.ResumeConfig
}

type LandingData struct {
	Base
	User           string
	WelcomeMessage string
	Action         string
	AvatarURL      string
	MemberSince    time.Time
}

func Home(b Base) templ.Component {
	b.Title = "Home"
	return render("index.html", b)
}

func About(b Base) templ.Component {
	b.Title = "About"
	return render("about.html", b)
}

func Pending(b Base) templ.Component {
	b.Title = "Coming soon"
	return render("pending.html", b)
}

func Contact(d ContactData) templ.Component {
	d.Title = "Contact"
	return render("contact.html", d)
}

func SignUp(d SignUpData) templ.Component {
	d.Title = "Sign up"
	return render("signup.html", d)
}

func Login(d LoginData) templ.Component {
	d.Title = "Login"
	return render("login.html", d)
}

func Resume(d ResumeData) templ.Component {
	d.Title = "Resume"
	if d.Resume == nil {
		d.Resume = &config.ResumeConfig{}
	}
	return render("resume.html", d)
}

func Landing(d LandingData) templ.Component {
	d.Title = "Welcome"
	return render("landing.html", d)
}
