package main

import (
	_ "embed"
	"html/template"
	"sync"

	"github.com/rs/zerolog/log"
)

// NoEmbed reads templates from the working directory on every request,
// for editing the page without rebuilding.
var NoEmbed bool

//go:embed www/index.html
var indexTemplateEmbed string

var (
	indexTemplate     *template.Template
	indexTemplateErr  error
	indexTemplateOnce sync.Once
)

func GetIndexTemplate() (*template.Template, error) {
	if NoEmbed {
		log.Debug().Msg("Reading index.html template dynamically from filesystem")
		return template.New("index.html").ParseFiles("www/index.html")
	}

	indexTemplateOnce.Do(func() {
		log.Debug().Msg("Caching embedded index.html")
		indexTemplate, indexTemplateErr = template.New("index.html").Parse(indexTemplateEmbed)
	})

	return indexTemplate, indexTemplateErr
}
