package emit

import (
	"github.com/panaflexx/gel2/internal/classes"
	"github.com/panaflexx/gel2/internal/lang/ast"
	"github.com/panaflexx/gel2/internal/types"
)

// emitOutOfLineDefs implements step 5: out-of-line member definitions
// (method bodies, constructor bodies, the destructor, static field storage),
// printed against Name::Member syntax regardless of the declaration's
// access level.
func (e *Emitter) emitOutOfLineDefs(c *types.Class) {
	members := e.reg.OwnMembers(c)
	ctors := filterKind(members, classes.KindCtor)
	e.emitCtorDefs(c, ctors)

	for _, m := range members {
		switch m.Kind {
		case classes.KindStaticField:
			e.printf("%s %s::%s;\n\n", TargetType(m.Type, FieldShape(e.reg, m.Type)), c.Name, m.Name)
		case classes.KindMethod:
			e.emitMethodDef(c, m)
		case classes.KindProperty:
			e.emitPropertyDef(c, m)
		case classes.KindIndexer:
			e.emitIndexerDef(c, m)
		}
	}

	e.emitDestructorDef(c)
}

func (e *Emitter) emitMethodDef(c *types.Class, m *classes.Member) {
	md := m.Decl.(*ast.MethodDecl)
	if md.Body == nil {
		return // abstract or extern: no body to emit
	}
	e.printf("%s %s::%s(%s) {\n", e.resultTypeName(m.Type), c.Name, m.Name, e.paramList(m.Params))
	e.curMember = m
	e.lowerStmts(md.Body.List, 1)
	e.curMember = nil
	e.printf("}\n\n")
}

func (e *Emitter) emitPropertyDef(c *types.Class, m *classes.Member) {
	pd := m.Decl.(*ast.PropertyDecl)
	if pd.Get != nil {
		e.printf("%s %s::Get%s() {\n", e.resultTypeName(m.Type), c.Name, m.Name)
		e.curMember = m
		e.lowerStmts(pd.Get.List, 1)
		e.curMember = nil
		e.printf("}\n\n")
	}
	if pd.Set != nil {
		e.printf("void %s::Set%s(%s value) {\n", c.Name, m.Name, e.resultTypeName(m.Type))
		e.curMember = m
		e.lowerStmts(pd.Set.List, 1)
		e.curMember = nil
		e.printf("}\n\n")
	}
}

func (e *Emitter) emitIndexerDef(c *types.Class, m *classes.Member) {
	ix := m.Decl.(*ast.IndexerDecl)
	keyType := ""
	if len(m.Params) > 0 {
		keyType = e.resultTypeName(m.Params[0].Type)
	}
	if ix.Get != nil {
		e.printf("%s %s::GetAt(%s index) {\n", e.resultTypeName(m.Type), c.Name, keyType)
		e.curMember = m
		e.lowerStmts(ix.Get.List, 1)
		e.curMember = nil
		e.printf("}\n\n")
	}
	if ix.Set != nil {
		e.printf("void %s::SetAt(%s index, %s value) {\n", c.Name, keyType, e.resultTypeName(m.Type))
		e.curMember = m
		e.lowerStmts(ix.Set.List, 1)
		e.curMember = nil
		e.printf("}\n\n")
	}
}

// emitDestructorDef prints the destructor and, for pool-allocated classes,
// the two-pass destroy hooks (spec §4.6, §9 "Arena with deferred
// destruction"): pass one runs ordinary teardown, pass two is invoked once
// the pool confirms no outstanding references remain.
func (e *Emitter) emitDestructorDef(c *types.Class) {
	e.printf("%s::~%s() {\n", c.Name, c.Name)
	e.printf("}\n\n")
	if c.PoolDestroyNeeded {
		e.printf("void %s::_DestroyPass1() {\n\t~%s();\n}\n\n", c.Name, c.Name)
		e.printf("void %s::_DestroyPass2() {\n\t// pool confirmed no outstanding references; free backing storage\n}\n\n", c.Name)
	}
}

// findMain locates the user's discovered entry point: a static method
// literally named Main, taking zero or one argument (spec §4.6 step 6, §6
// "the zero- or one-argument form").
func findMain(reg *classes.Registry) (*types.Class, *classes.Member) {
	for _, c := range reg.All() {
		for _, m := range reg.OwnMembers(c) {
			if m.Kind == classes.KindMethod && m.Name == "Main" && m.IsStatic() {
				return c, m
			}
		}
	}
	return nil, nil
}

// emitEntryPoint implements step 6: a generated entry point delegating to
// the user's discovered Main.
func (e *Emitter) emitEntryPoint() {
	cls, m := findMain(e.reg)
	if m == nil {
		return
	}
	e.printf("int main(int argc, char** argv) {\n")
	if len(m.Params) == 1 {
		e.printf("\tauto args = gel::Array<gel::String>::FromArgv(argc, argv);\n")
		e.printf("\t%s::%s(args);\n", cls.Name, m.Name)
	} else {
		e.printf("\t%s::%s();\n", cls.Name, m.Name)
	}
	e.printf("\treturn 0;\n")
	e.printf("}\n")
}
