package emit

import (
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

// access is one of the three visibility levels tracked for the "access
// transitions" step 4 describes: "public/protected access transitions
// inserted when an adjacent member differs from the current access."
type access int

const (
	accessPublic access = iota
	accessProtected
	accessPrivate
	accessNone // sentinel: no member emitted yet, forces the first transition
)

func memberAccess(m *classes.Member) access {
	switch {
	case m.IsPrivate():
		return accessPrivate
	case m.IsProtected():
		return accessProtected
	default:
		return accessPublic
	}
}

func (a access) keyword() string {
	switch a {
	case accessProtected:
		return "protected"
	case accessPrivate:
		return "private"
	default:
		return "public"
	}
}

// baseClassName chooses c's emitted base class: an explicit user parent by
// name, or one of the bundled runtime's two root bases depending on
// object_inheritance_needed / virtual_needed (spec §3's two derived
// booleans; spec §9 "the core marks classes non-virtual unless an explicit
// conversion or an owning allocation demands it... otherwise the class
// inherits from a non-virtual base to avoid paying a vtable").
func (e *Emitter) baseClassName(c *types.Class) string {
	if c.Parent != nil && c.Parent != e.reg.Object && !c.Parent.IsExtern {
		return c.Parent.Name
	}
	if c.ObjectInheritanceNeed || c.VirtualNeeded {
		return "gel::Object"
	}
	return "gel::NonVirtualBase"
}

// emitClassDecl implements step 4: "Full class declarations in
// parent-before-child order, with public/protected access transitions
// inserted when an adjacent member differs from the current access."
func (e *Emitter) emitClassDecl(c *types.Class) {
	e.printf("class %s : public %s {\n", c.Name, e.baseClassName(c))
	e.printf("public:\n")
	cur := accessPublic

	members := e.reg.OwnMembers(c)
	ctors := filterKind(members, classes.KindCtor)
	e.emitCtorDecls(c, ctors, &cur)

	for _, m := range members {
		if m.Kind == classes.KindCtor {
			continue
		}
		if a := memberAccess(m); a != cur {
			e.printf("%s:\n", a.keyword())
			cur = a
		}
		e.emitMemberDecl(c, m)
	}

	if cur != accessPublic {
		e.printf("public:\n")
	}
	if c.VirtualNeeded {
		e.printf("\tvirtual ~%s();\n", c.Name)
	} else {
		e.printf("\t~%s();\n", c.Name)
	}
	if c.PoolDestroyNeeded {
		// spec §4.6 "a pair of sentinel destroy hooks". As defined by
		// emitDestructorDef, pass one only calls the destructor; it does not
		// stash or restore the vtable pointer. Pass two has an empty body:
		// it neither checks the deferred ref count nor frees memory.
		e.printf("\tvoid _DestroyPass1();\n")
		e.printf("\tvoid _DestroyPass2();\n")
	}
	e.printf("};\n\n")
}

func filterKind(members []*classes.Member, k classes.Kind) []*classes.Member {
	var out []*classes.Member
	for _, m := range members {
		if m.Kind == k {
			out = append(out, m)
		}
	}
	return out
}

func (e *Emitter) emitMemberDecl(c *types.Class, m *classes.Member) {
	switch m.Kind {
	case classes.KindField:
		shape := FieldShape(e.reg, m.Type)
		e.printf("\t%s %s;\n", TargetType(m.Type, shape), m.Name)
	case classes.KindConstField:
		e.printf("\tstatic constexpr %s %s = %s;\n", TargetType(m.Type, ShapeValue), m.Name, constLiteral(m))
	case classes.KindStaticField:
		e.printf("\tstatic %s %s;\n", TargetType(m.Type, FieldShape(e.reg, m.Type)), m.Name)
	case classes.KindMethod:
		e.printf("\t%s%s %s(%s);\n", methodPrefix(m), e.resultTypeName(m.Type), m.Name, e.paramList(m.Params))
	case classes.KindProperty:
		pd := m.Decl.(*ast.PropertyDecl)
		if pd.Get != nil {
			e.printf("\t%s Get%s();\n", e.resultTypeName(m.Type), m.Name)
		}
		if pd.Set != nil {
			e.printf("\tvoid Set%s(%s value);\n", m.Name, e.resultTypeName(m.Type))
		}
	case classes.KindIndexer:
		ix := m.Decl.(*ast.IndexerDecl)
		keyType := ""
		if len(m.Params) > 0 {
			keyType = e.resultTypeName(m.Params[0].Type)
		}
		if ix.Get != nil {
			e.printf("\t%s GetAt(%s index);\n", e.resultTypeName(m.Type), keyType)
		}
		if ix.Set != nil {
			e.printf("\tvoid SetAt(%s index, %s value);\n", keyType, e.resultTypeName(m.Type))
		}
	}
}

func methodPrefix(m *classes.Member) string {
	if m.IsOverride {
		return "" // overriding signature carries no extra keyword; virtuality lives on the base
	}
	if m.Mods.Has(ast.ModVirtual) {
		return "virtual "
	}
	if m.IsStatic() {
		return "static "
	}
	return ""
}

func (e *Emitter) resultTypeName(t types.Type) string {
	if _, isVoid := t.(*types.Void); isVoid {
		return "void"
	}
	return TargetType(t, FieldShape(e.reg, t))
}

func (e *Emitter) paramList(params []classes.Param) string {
	s := ""
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		shape := FieldShape(e.reg, p.Type)
		switch p.Mode {
		case ast.ModeRef, ast.ModeOut:
			s += TargetType(p.Type, shape) + "&"
		default:
			s += TargetType(p.Type, shape)
		}
		s += " " + p.Name
	}
	return s
}

func constLiteral(m *classes.Member) string {
	if m.ConstValue == nil {
		return "0"
	}
	return m.ConstValue.String()
}
