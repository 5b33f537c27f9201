package emit_test

import (
	"strings"
	"testing"

	"github.com/DanielSharp01/eprotoc/emit"
	"github.com/DanielSharp01/eprotoc/genir"
	"github.com/DanielSharp01/eprotoc/internal/testutil"
	"github.com/DanielSharp01/eprotoc/types"
)

func TestEmitSingleScalarFieldMessage(t *testing.T) {
	reg := types.NewRegistry()
	def := &types.Definition{
		Kind: types.DefMessage,
		Name: "Ping",
		Fields: []types.MessageField{
			{Ordinal: 1, Name: "count", Type: types.Real(reg.Builtin(types.Int32))},
		},
	}
	testutil.AssertNoError(t, reg.Define("ping.eproto", def))

	e := emit.New(reg, types.NewServiceRegistry(), genir.Native, ".eproto.out.js")
	f := e.EmitSourceFile("ping.eproto", []*types.Definition{def}, nil)

	want := `function serializePing(writer, value, end) {
  writer.tag(1, 0);
  writer.int32(value.count);
}

function deserializePing(reader, end) {
  let value;
  value = {};
  while (reader.pos < end) {
    const tag = reader.tag();
    switch (tag.ordinal) {
    case 1:
      value.count = reader.int32();
      break;
    default:
      reader.skip(tag.wireType);
    }
  }
  return value;
}

`
	testutil.ExpectNoDiff(t, want, f.Contents)
	testutil.ExpectEq(t, "ping.eproto.out.js", f.Path)
}

func TestEmitOptionalFieldWrapsNullable(t *testing.T) {
	reg := types.NewRegistry()
	def := &types.Definition{
		Kind: types.DefMessage,
		Name: "Labelled",
		Fields: []types.MessageField{
			{Ordinal: 1, Name: "label", Optional: true, Type: types.Real(reg.Builtin(types.String))},
		},
	}
	testutil.AssertNoError(t, reg.Define("l.eproto", def))

	e := emit.New(reg, types.NewServiceRegistry(), genir.Native, ".eproto.out.js")
	f := e.EmitSourceFile("l.eproto", []*types.Definition{def}, nil)

	testutil.ExpectTrue(t, strings.Contains(f.Contents, "writer.fork();"))
	testutil.ExpectTrue(t, strings.Contains(f.Contents, "value.label !== null && value.label !== undefined"))
	testutil.ExpectTrue(t, strings.Contains(f.Contents, "writer.ldelim();"))
}

func TestEmitCrossFileMessageRefImportsAliased(t *testing.T) {
	reg := types.NewRegistry()
	meta := &types.Definition{Kind: types.DefMessage, PackageID: "pkg", Name: "Meta"}
	testutil.AssertNoError(t, reg.Define("meta.eproto", meta))

	parent := &types.Definition{
		Kind:      types.DefMessage,
		PackageID: "pkg",
		Name:      "Envelope",
		Fields: []types.MessageField{
			{Ordinal: 1, Name: "meta", Type: types.Real(meta)},
		},
	}
	testutil.AssertNoError(t, reg.Define("envelope.eproto", parent))

	e := emit.New(reg, types.NewServiceRegistry(), genir.Native, ".eproto.out.js")
	f := e.EmitSourceFile("envelope.eproto", []*types.Definition{parent}, nil)

	testutil.ExpectTrue(t, strings.Contains(f.Contents, `import { Meta as pkg__Meta } from "./meta.eproto.out.js";`))
	testutil.ExpectTrue(t, strings.Contains(f.Contents, "writer.fork();"))
	testutil.ExpectTrue(t, strings.Contains(f.Contents, "pkg__Meta.serializeMeta(writer, value.meta);"))
	testutil.ExpectTrue(t, strings.Contains(f.Contents, "writer.ldelim();"))
}

// TestEmitNestedMessageFieldRoundtripsLengthFraming is the E4 scenario
// (a message field referencing another message): it asserts the
// serialize side frames the nested call with fork()/ldelim() and the
// deserialize side computes its own fresh `end` boundary for it, rather
// than reusing the enclosing message's `end` — the two properties that
// make a nested message field roundtrip on the wire instead of reading
// past (or short of) its own bytes.
func TestEmitNestedMessageFieldRoundtripsLengthFraming(t *testing.T) {
	reg := types.NewRegistry()
	fruit := &types.Definition{Kind: types.DefMessage, PackageID: "a", Name: "Fruit"}
	testutil.AssertNoError(t, reg.Define("fruit.eproto", fruit))

	box := &types.Definition{
		Kind:      types.DefMessage,
		PackageID: "a",
		Name:      "Box",
		Fields: []types.MessageField{
			{Ordinal: 1, Name: "f", Type: types.Real(fruit)},
		},
	}
	testutil.AssertNoError(t, reg.Define("box.eproto", box))

	e := emit.New(reg, types.NewServiceRegistry(), genir.Native, ".eproto.out.js")
	f := e.EmitSourceFile("box.eproto", []*types.Definition{box}, nil)

	want := `import { Fruit as a__Fruit } from "./fruit.eproto.out.js";

function serializeBox(writer, value, end) {
  writer.tag(1, 2);
  writer.fork();
  a__Fruit.serializeFruit(writer, value.f);
  writer.ldelim();
}

function deserializeBox(reader, end) {
  let value;
  value = {};
  while (reader.pos < end) {
    const tag = reader.tag();
    switch (tag.ordinal) {
    case 1:
      {
        const end = reader.uint32() + reader.pos;
        value.f = a__Fruit.deserializeFruit(reader, end);
      }
      break;
    default:
      reader.skip(tag.wireType);
    }
  }
  return value;
}

`
	testutil.ExpectNoDiff(t, want, f.Contents)
}

func TestEmitServiceDescriptorVoidResponse(t *testing.T) {
	reg := types.NewRegistry()
	svcReg := types.NewServiceRegistry()
	svc := &types.Service{
		Name: "Pinger",
		RPCs: []*types.RPC{
			{
				Name:         "Ping",
				Path:         "/Pinger/Ping",
				RequestType:  types.Real(reg.Builtin(types.Int32)),
				ResponseType: types.Real(reg.Builtin(types.Void)),
			},
		},
	}
	svcReg.Define("pinger.eproto", svc)

	e := emit.New(reg, svcReg, genir.Native, ".eproto.out.js")
	f := e.EmitSourceFile("pinger.eproto", nil, []*types.Service{svc})

	testutil.ExpectTrue(t, strings.Contains(f.Contents, `path: "/Pinger/Ping",`))
	testutil.ExpectTrue(t, strings.Contains(f.Contents, "responseSerialize: (value) => new Uint8Array(0),"))
	testutil.ExpectTrue(t, strings.Contains(f.Contents, "responseDeserialize: (bytes) => ({}),"))
}

func TestEmitAnyProducesSyntheticFileOnlyWhenReferenced(t *testing.T) {
	reg := types.NewRegistry()
	def := &types.Definition{
		Kind: types.DefMessage,
		Name: "Payload",
		Fields: []types.MessageField{
			{Ordinal: 1, Name: "data", Type: types.Real(reg.Builtin(types.Any))},
		},
	}
	testutil.AssertNoError(t, reg.Define("payload.eproto", def))

	e := emit.New(reg, types.NewServiceRegistry(), genir.Native, ".eproto.out.js")
	files := e.Output()

	var anyFile *emit.File
	for i := range files {
		if files[i].Path == "any.eproto.out" {
			anyFile = &files[i]
		}
	}
	if anyFile == nil {
		t.Fatal("expected a synthetic any.eproto.out file when Any is referenced")
	}
	testutil.ExpectTrue(t, strings.Contains(anyFile.Contents, "function serializeAny"))
	testutil.ExpectTrue(t, strings.Contains(anyFile.Contents, "function deserializeAny"))
}
