package compiler

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	rws "github.com/davidfrivas/RandomWalkSeq"
)

// Compiler exports the state document as source code or a text step sheet,
// one template per output format.
type Compiler struct {
	Template *template.Template
	Package  string
	Name     string
}

const templateSuffix = ".tmpl"

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

// New returns a new compiler using the default templates
func New(pkg, name string) (*Compiler, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseFS(defaultTemplates, "templates/*"+templateSuffix)
	if err != nil {
		return nil, fmt.Errorf(`could not parse the default templates: %v`, err)
	}
	return &Compiler{Template: tmpl, Package: pkg, Name: name}, nil
}

func NewFromTemplates(pkg, name, templateDirectory string) (*Compiler, error) {
	globPtrn := filepath.Join(templateDirectory, "*"+templateSuffix)
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Compiler{Template: tmpl, Package: pkg, Name: name}, nil
}

// Formats lists the extensions there is a template for, without the dot.
func (com *Compiler) Formats() []string {
	var ret []string
	for _, t := range com.Template.Templates() {
		if ext, ok := strings.CutSuffix(t.Name(), templateSuffix); ok {
			ret = append(ret, strings.TrimPrefix(filepath.Ext(ext), "."))
		}
	}
	slices.Sort(ret)
	return ret
}

// State exports the state in the given formats; no formats means all of
// them. The returned map is keyed by extension, with the dot.
func (com *Compiler) State(s rws.State, formats ...string) (map[string]string, error) {
	if len(formats) == 0 {
		formats = com.Formats()
	}
	macros := NewStateMacros(s, com.Package, com.Name)
	retmap := map[string]string{}
	for _, format := range formats {
		templateName := "state." + strings.TrimPrefix(format, ".") + templateSuffix
		if com.Template.Lookup(templateName) == nil {
			return nil, fmt.Errorf(`no template for the format "%v"`, format)
		}
		populatedTemplate, extension, err := com.compile(templateName, macros)
		if err != nil {
			return nil, fmt.Errorf(`could not execute template "%v": %v`, templateName, err)
		}
		retmap[extension] = populatedTemplate
	}
	return retmap, nil
}

func (com *Compiler) compile(templateName string, data interface{}) (string, string, error) {
	result := bytes.NewBufferString("")
	err := com.Template.ExecuteTemplate(result, templateName, data)
	extension := filepath.Ext(strings.TrimSuffix(templateName, templateSuffix))
	return result.String(), extension, err
}
