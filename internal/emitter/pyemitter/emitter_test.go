package pyemitter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/emitter/emittertest"
	"github.com/mark3labs/swagger2client/internal/ir"
)

func render(t *testing.T, m *ir.Model, opts emitter.Options) string {
	t.Helper()
	out, err := New(m, opts).Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, src string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(src, w) {
			t.Errorf("output is missing:\n%s\n--- output ---\n%s", w, src)
		}
	}
}

func TestRender_Prologue(t *testing.T) {
	t.Parallel()
	src := render(t, emittertest.Model(t), emitter.Options{})
	if !strings.HasPrefix(src, "# Code generated by swagger2client. DO NOT EDIT.\n# Source: Petstore\n\nfrom __future__ import annotations\n") {
		t.Fatalf("unexpected prologue:\n%s", src[:200])
	}
	assertContains(t, src, "\nimport user_defined as ud\n")

	src = render(t, emittertest.Model(t), emitter.Options{Runtime: ".runtime"})
	assertContains(t, src, "\nfrom . import runtime as ud\n")
}

func TestRender_Declarations(t *testing.T) {
	t.Parallel()
	src := render(t, emittertest.Model(t), emitter.Options{})

	assertContains(t, src,
		"class Pet(TypedDict):\n"+
			"    \"\"\"A pet in the store.\"\"\"\n\n"+
			"    id: int\n"+
			"    name: str\n"+
			"    status: Status\n"+
			"    tag: NotRequired[Tag | None]\n"+
			"    weight: NotRequired[float | None]\n"+
			"    location: NotRequired[Point]\n"+
			"    shape: NotRequired[Shape]\n"+
			"    friends: NotRequired[list[Pet]]\n",
		"type Status = Literal[\"available\", \"pending\", \"sold\"]\n",
		"type Point = tuple[float, float]\n",
		"type Shape = Circle | Square\n",
		"class Circle(TypedDict):\n    kind: Literal[\"circle\"]\n    radius: float\n",
		"type Id = str | int\n",
		"type PetAlias = Pet\n",
	)
	if strings.Contains(src, "Session(TypedDict)") {
		t.Error("user-defined Session must not be declared")
	}
}

func TestRender_TaggedVariants(t *testing.T) {
	t.Parallel()
	src := render(t, emittertest.Model(t), emitter.Options{})
	assertContains(t, src,
		"class LabeledCircle(TypedDict):\n"+
			"    label: str\n"+
			"    kind: Literal[\"circle\"]\n"+
			"    radius: float\n\n\n"+
			"class LabeledSquare(TypedDict):\n"+
			"    label: str\n"+
			"    kind: Literal[\"square\"]\n"+
			"    side: float\n\n\n"+
			"type Labeled = LabeledCircle | LabeledSquare\n",
	)
}

func TestRender_FunctionalTypedDict(t *testing.T) {
	t.Parallel()
	m := emittertest.Build(t, `openapi: 3.0.0
info: { title: t, version: "1" }
paths: {}
components:
  schemas:
    Headers:
      description: Raw headers.
      type: object
      required: [Content-Type]
      properties:
        Content-Type: { type: string }
        from: { type: integer }
`)
	src := render(t, m, emitter.Options{})
	assertContains(t, src,
		"# Raw headers.\n"+
			"Headers = TypedDict(\n"+
			"    \"Headers\",\n"+
			"    {\n"+
			"        \"Content-Type\": 'str',\n"+
			"        \"from\": 'NotRequired[int]',\n"+
			"    },\n"+
			")\n",
	)
}

func TestRender_Routes(t *testing.T) {
	t.Parallel()
	src := render(t, emittertest.Model(t), emitter.Options{})
	assertContains(t, src,
		"async def list_pets(\n"+
			"    *,\n"+
			"    limit: int | None = None,\n"+
			"    x_request_id: str,\n"+
			"    session: str | None = None,\n"+
			"    override: ud.HttpxProps | None = None,\n"+
			") -> ud.Result[list[Pet]]:\n"+
			"    \"\"\"List pets\n"+
			"    Returns a page of pets.\n"+
			"    \"\"\"\n"+
			"    r = await ud.httpx(\n"+
			"        url=f\"/pets\",\n"+
			"        method=\"GET\",\n"+
			"        params={\"limit\": limit},\n"+
			"        headers={\"X-Request-Id\": x_request_id},\n"+
			"        cookies={\"session\": session},\n"+
			"        override=override,\n"+
			"    )\n"+
			"    return ud.Result.json(r)\n",
		"    data = ud.Body.json(body)\n",
		"        headers={\"Content-Type\": \"application/json\"},\n",
		"        url=f\"/pets/{quote(str(pet_id), safe='')}\",\n",
		") -> ud.Result[ud.Session]:\n",
		") -> ud.Result[bytes]:\n",
		"    return ud.Result.empty(r)\n",
	)
}

func TestRender_HoistedMultipartBody(t *testing.T) {
	t.Parallel()
	src := render(t, emittertest.Model(t), emitter.Options{})
	assertContains(t, src,
		"class PutPetsPetIdPhotoBody(TypedDict):\n"+
			"    file: bytes\n"+
			"    caption: NotRequired[str | None]\n"+
			"    meta: Tag\n"+
			"    rank: NotRequired[int]\n\n\n"+
			"async def put_pets_pet_id_photo(\n",
		"    form = ud.Form.multipart()\n"+
			"    form.file(\"file\", body[\"file\"])\n"+
			"    if body.get(\"caption\") is not None:\n"+
			"        form.field(\"caption\", body[\"caption\"])\n"+
			"    form.json(\"meta\", body[\"meta\"])\n"+
			"    if body.get(\"rank\") is not None:\n"+
			"        form.field(\"rank\", str(body[\"rank\"]))\n"+
			"    data = ud.Body.form(form)\n",
		"class PostLoginBody(TypedDict):\n",
		"    form = ud.Form.urlencoded()\n",
	)
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()
	emittertest.AssertDeterministic(t, func(m *ir.Model) ([]byte, error) {
		return New(m, emitter.Options{}).Render()
	})
}

func TestRender_UnhandledKind(t *testing.T) {
	t.Parallel()
	_, err := New(&ir.Model{}, emitter.Options{}).TypeDecl(&ir.Type{Name: "Bad", Kind: ir.Unknown{}})
	if !ir.IsKind(err, ir.UnhandledIrVariant) {
		t.Fatalf("expected UnhandledIrVariant, got %v", err)
	}
}

func TestEmit_NilModel(t *testing.T) {
	t.Parallel()
	if _, err := Emit(context.Background(), nil, emitter.Options{OutDir: t.TempDir()}); err == nil {
		t.Fatal("expected error for nil model")
	}
}

func TestEmit_WritesClient(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	res, err := Emit(context.Background(), emittertest.Model(t), emitter.Options{OutDir: dir})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(res.Planned) != 1 || res.Planned[0].RelPath != FileName {
		t.Fatalf("unexpected plan: %+v", res.Planned)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("client.py not written: %v", err)
	}
}
