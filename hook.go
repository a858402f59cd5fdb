package delta

type hookKind uint8

const (
	hookClosure hookKind = iota
	hookMethod
)

// Hook is the callback a binding invokes with a projected property value.
// It is either a method applied to the binding's target or a plain closure.
type Hook[T, P any] struct {
	kind    hookKind
	method  func(*T, P)
	closure func(P)
}

// Method builds a hook that calls fn with the live target. Method expressions
// fit directly:
//
//	delta.Method((*Toolbar).SetTitle)
func Method[T, P any](fn func(*T, P)) Hook[T, P] {
	return Hook[T, P]{kind: hookMethod, method: fn}
}

// Closure builds a hook that calls fn with the property value. The binding
// still stops once its target is collected.
func Closure[T, P any](fn func(P)) Hook[T, P] {
	return Hook[T, P]{kind: hookClosure, closure: fn}
}

// invoke calls the hook. A nil target means the target was collected.
func (h Hook[T, P]) invoke(target *T, tracked bool, v P) error {
	switch h.kind {
	case hookMethod:
		if target == nil {
			return ErrTargetReleased
		}
		if h.method != nil {
			h.method(target, v)
		}
	case hookClosure:
		if tracked && target == nil {
			return ErrTargetReleased
		}
		if h.closure != nil {
			h.closure(v)
		}
	}
	return nil
}
