package main

import (
	_ "embed"
	"io"
	"text/template"
)

//go:embed ringtool.service
var ringtoolServiceEmbed string

type RingtoolServiceParams struct {
	BinaryPath string
	User       string
	ConfigPath string
}

// SystemdServiceFile renders a unit that runs the API server.
func SystemdServiceFile(w io.Writer, params RingtoolServiceParams) error {
	tmpl, err := template.New("ringtool.service").Parse(ringtoolServiceEmbed)
	if err != nil {
		return err
	}

	if params.User == "" {
		params.User = "ringtool"
	}

	return tmpl.Execute(w, params)
}
