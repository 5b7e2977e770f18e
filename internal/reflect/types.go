package reflect

import (
	"fmt"
	"reflect"
	"sync"
)

type initializer interface {
	Init() error
}

var typeNameCache sync.Map

func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	if cached, ok := typeNameCache.Load(t); ok {
		return cached.(string)
	}

	name := buildTypeName(t)
	typeNameCache.Store(t, name)
	return name
}

func buildTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Ptr:
		return "*" + buildTypeName(t.Elem())
	case reflect.Slice:
		return "[]" + buildTypeName(t.Elem())
	case reflect.Array:
		return fmt.Sprintf("[%d]%s", t.Len(), buildTypeName(t.Elem()))
	case reflect.Map:
		return "map[" + buildTypeName(t.Key()) + "]" + buildTypeName(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + buildTypeName(t.Elem())
		case reflect.SendDir:
			return "chan<- " + buildTypeName(t.Elem())
		default:
			return "chan " + buildTypeName(t.Elem())
		}
	case reflect.Func:
		return t.String()
	default:
		if t.PkgPath() != "" && t.Name() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.String()
	}
}

func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// AssignableTo reports whether v can be handed out as a value of type t.
func AssignableTo(v any, t reflect.Type) bool {
	if v == nil || t == nil {
		return false
	}
	return reflect.TypeOf(v).AssignableTo(t)
}

func Constructible(t reflect.Type) bool {
	if t == nil {
		return false
	}

	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return false
	case reflect.Ptr:
		elem := t.Elem()
		return elem.Kind() != reflect.Ptr && Constructible(elem)
	default:
		return true
	}
}

// Construct builds a fresh value of t the way a zero-argument constructor
// would: pointers get newly allocated zero values, maps and slices are
// created empty. Values implementing Init() error are initialized before
// being returned; for struct and scalar types Init may have a pointer
// receiver, and the returned value is the initialized copy. A panic inside
// Init is reported as an error.
func Construct(t reflect.Type) (instance any, err error) {
	if !Constructible(t) {
		return nil, fmt.Errorf("type %s has no default constructor", TypeName(t))
	}

	var v reflect.Value
	switch t.Kind() {
	case reflect.Ptr:
		v = reflect.New(t.Elem())
	case reflect.Map:
		v = reflect.MakeMap(t)
	case reflect.Slice:
		v = reflect.MakeSlice(t, 0, 0)
	default:
		v = reflect.New(t).Elem()
	}

	target := v
	if v.CanAddr() {
		target = v.Addr()
	}

	initer, ok := target.Interface().(initializer)
	if !ok {
		return v.Interface(), nil
	}

	defer func() {
		if r := recover(); r != nil {
			instance = nil
			err = fmt.Errorf("initializer panicked for %s: %v", TypeName(t), r)
		}
	}()

	if err := initer.Init(); err != nil {
		return nil, fmt.Errorf("initializer failed for %s: %w", TypeName(t), err)
	}

	return v.Interface(), nil
}
