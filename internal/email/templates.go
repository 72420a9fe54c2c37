package email

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	texttpl "text/template"
)

type Templates struct {
	ForgotHTML *template.Template
	ForgotTXT  *texttpl.Template
}

const TemplateForgotPassword = "forgot_password"

// ForgotVars son las variables del template de reset de contraseña.
type ForgotVars struct {
	Name      string
	ResetLink string
	TTL       string
}

func LoadTemplates(dir string) (*Templates, error) {
	read := func(name string) (string, error) {
		b, err := os.ReadFile(filepath.Join(dir, name))
		return string(b), err
	}
	fh, err := read("forgot_password.html")
	if err != nil {
		return nil, err
	}
	ft, err := read("forgot_password.txt")
	if err != nil {
		return nil, err
	}

	fhT, err := template.New("forgot_html").Parse(fh)
	if err != nil {
		return nil, err
	}
	ftT, err := texttpl.New("forgot_txt").Parse(ft)
	if err != nil {
		return nil, err
	}
	return &Templates{ForgotHTML: fhT, ForgotTXT: ftT}, nil
}

// RenderForgot compila ambos cuerpos (html + txt).
func (t *Templates) RenderForgot(v ForgotVars) (html string, txt string, err error) {
	var hb, tb bytes.Buffer
	if err := t.ForgotHTML.Execute(&hb, v); err != nil {
		return "", "", err
	}
	if err := t.ForgotTXT.Execute(&tb, v); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
