package geometry

import (
	"fmt"

	"github.com/prism-render/prism/types"
)

// A triangle mesh stored as flat vertex/normal/uv arrays plus an index list
// with three entries per face. Normals and UVs are optional; when present
// they must parallel the vertex list.
type Mesh struct {
	Name     string
	Vertices []types.Vec3
	Normals  []types.Vec3
	UVs      []types.Vec2
	Indices  []uint32
}

// Create a mesh and validate its index list.
func NewMesh(name string, vertices []types.Vec3, indices []uint32) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh %q: index count %d is not a multiple of 3", name, len(indices))
	}
	for _, index := range indices {
		if int(index) >= len(vertices) {
			return nil, fmt.Errorf("mesh %q: index %d out of vertex range", name, index)
		}
	}
	return &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}, nil
}

// Get the number of triangle faces in the mesh.
func (m *Mesh) FaceCount() int {
	return len(m.Indices) / 3
}

// Materialize one primitive per mesh face. The returned triangles hold a
// non-owning back-reference into the mesh and must not outlive it.
func (m *Mesh) Triangles() []Primitive {
	prims := make([]Primitive, m.FaceCount())
	for id := range prims {
		prims[id] = newTriangle(m, uint32(id))
	}
	return prims
}

// Fetch the three vertices of a face.
func (m *Mesh) face(id uint32) (v0, v1, v2 types.Vec3) {
	base := id * 3
	return m.Vertices[m.Indices[base]], m.Vertices[m.Indices[base+1]], m.Vertices[m.Indices[base+2]]
}

// A single triangle of a mesh: a mesh back-reference plus a stable face
// index. Immutable after creation; the bounding box and geometric normal are
// computed once at construction.
type Triangle struct {
	mesh *Mesh
	id   uint32

	bbox    types.BBox
	center  types.Vec3
	gNormal types.Vec3
}

func newTriangle(mesh *Mesh, id uint32) *Triangle {
	v0, v1, v2 := mesh.face(id)
	bbox := types.BBoxFromPoints(v0, v1, v2)
	return &Triangle{
		mesh:    mesh,
		id:      id,
		bbox:    bbox,
		center:  bbox.Center(),
		gNormal: v1.Sub(v0).Cross(v2.Sub(v0)).Normalize(),
	}
}

// Get the stable face index of the triangle within its mesh.
func (t *Triangle) ID() uint32 {
	return t.id
}

// Test the ray against the triangle using the Moller-Trumbore algorithm.
func (t *Triangle) Intersect(ray *Ray, isect *Intersection) bool {
	const detEpsilon float32 = 1e-8

	v0, v1, v2 := t.mesh.face(t.id)
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	pVec := ray.Dir.Cross(edge2)
	det := edge1.Dot(pVec)

	// Ray parallel to the triangle plane.
	if det > -detEpsilon && det < detEpsilon {
		return false
	}

	invDet := 1.0 / det
	tVec := ray.Origin.Sub(v0)
	u := tVec.Dot(pVec) * invDet
	if u < 0.0 || u > 1.0 {
		return false
	}

	qVec := tVec.Cross(edge1)
	v := ray.Dir.Dot(qVec) * invDet
	if v < 0.0 || u+v > 1.0 {
		return false
	}

	dist := edge2.Dot(qVec) * invDet
	if dist < ray.TMin || dist > ray.TMax {
		return false
	}

	// Existence test only.
	if isect == nil {
		return true
	}

	// Keep the caller's running best.
	if dist >= isect.T {
		return false
	}

	isect.T = dist
	isect.Point = ray.At(dist)
	isect.Normal = t.shadingNormal(u, v)
	isect.UV = t.uv(u, v)
	isect.Prim = t
	isect.PrimID = t.id
	return true
}

// Interpolate the per-vertex shading normal, falling back to the geometric
// normal for meshes without normals.
func (t *Triangle) shadingNormal(u, v float32) types.Vec3 {
	if len(t.mesh.Normals) == 0 {
		return t.gNormal
	}
	base := t.id * 3
	n0 := t.mesh.Normals[t.mesh.Indices[base]]
	n1 := t.mesh.Normals[t.mesh.Indices[base+1]]
	n2 := t.mesh.Normals[t.mesh.Indices[base+2]]
	w := 1.0 - u - v
	return n0.Mul(w).Add(n1.Mul(u)).Add(n2.Mul(v)).Normalize()
}

func (t *Triangle) uv(u, v float32) types.Vec2 {
	if len(t.mesh.UVs) == 0 {
		return types.Vec2{u, v}
	}
	base := t.id * 3
	uv0 := t.mesh.UVs[t.mesh.Indices[base]]
	uv1 := t.mesh.UVs[t.mesh.Indices[base+1]]
	uv2 := t.mesh.UVs[t.mesh.Indices[base+2]]
	w := 1.0 - u - v
	return uv0.Mul(w).Add(uv1.Mul(u)).Add(uv2.Mul(v))
}

// Get the triangle bounding box.
func (t *Triangle) BBox() types.BBox {
	return t.bbox
}

// Get the triangle center.
func (t *Triangle) Center() types.Vec3 {
	return t.center
}
