package needlecli

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/danpasecinic/needlecli/internal/container"
	needlereflect "github.com/danpasecinic/needlecli/internal/reflect"
)

type BindingInfo struct {
	Service        string
	Kind           string
	Implementation string
	Instantiated   bool
}

// Bindings lists the effective bindings in registration order, the latest
// registration of each service type winning.
func (r *Registrar) Bindings() []BindingInfo {
	definitions := r.registry.Snapshot()
	bindings := make([]BindingInfo, 0, len(definitions))

	for _, def := range definitions {
		bindings = append(bindings, bindingInfo(def, def.Kind == container.KindInstance))
	}

	return bindings
}

func (r *Registrar) PrintBindings() {
	r.FprintBindings(os.Stdout)
}

func (r *Registrar) FprintBindings(w io.Writer) {
	renderBindings(w, r.Bindings())
}

func (r *Registrar) SprintBindings() string {
	var sb strings.Builder
	r.FprintBindings(&sb)
	return sb.String()
}

// Bindings lists the bindings of the resolver's container with their
// instantiation state.
func (r *Resolver) Bindings() []BindingInfo {
	keys := r.container.Keys()
	bindings := make([]BindingInfo, 0, len(keys))

	for _, key := range keys {
		def, ok := r.container.Definition(key)
		if !ok {
			continue
		}
		bindings = append(bindings, bindingInfo(def, r.container.Instantiated(key)))
	}

	return bindings
}

func (r *Resolver) FprintBindings(w io.Writer) {
	renderBindings(w, r.Bindings())
}

func bindingInfo(def *container.Definition, instantiated bool) BindingInfo {
	info := BindingInfo{
		Service:      needlereflect.TypeName(def.Key),
		Kind:         def.Kind.String(),
		Instantiated: instantiated,
	}

	switch def.Kind {
	case container.KindType:
		info.Implementation = needlereflect.TypeName(def.Implementation)
	case container.KindInstance:
		info.Implementation = needlereflect.TypeName(reflect.TypeOf(def.Instance))
	case container.KindFactory:
		info.Implementation = "func() (any, error)"
	}

	return info
}

func renderBindings(w io.Writer, bindings []BindingInfo) {
	if len(bindings) == 0 {
		_, _ = fmt.Fprintln(w, "(no bindings)")
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"", "Service", "Kind", "Implementation"})

	for _, b := range bindings {
		status := "○"
		if b.Instantiated {
			status = "●"
		}
		tw.AppendRow(table.Row{status, b.Service, b.Kind, b.Implementation})
	}

	tw.Render()
}
