package scene

import (
	"fmt"

	"github.com/prism-render/prism/geometry"
	"github.com/prism-render/prism/light"
	"github.com/prism-render/prism/types"
)

// The Entity interface is the expansion contract consumed during the scene
// load phase: each entity appends zero or more primitives and zero or more
// lights to the scene. Where entity data comes from (serialized meshes,
// procedural generators) is outside the scene's concern.
type Entity interface {
	FillScene(s *Scene) error
}

// A MeshEntity positions one mesh inside the scene with a transform and
// expands it into per-face triangle primitives.
type MeshEntity struct {
	Mesh      *geometry.Mesh
	Transform types.Mat4
}

// Create a mesh entity with an identity transform.
func NewMeshEntity(mesh *geometry.Mesh) *MeshEntity {
	return &MeshEntity{Mesh: mesh, Transform: types.Mat4Ident()}
}

// Append the transformed mesh triangles to the scene.
func (e *MeshEntity) FillScene(s *Scene) error {
	if e.Mesh == nil {
		return fmt.Errorf("mesh entity: no mesh bound")
	}

	mesh := e.Mesh
	if e.Transform != types.Mat4Ident() {
		// Bake the transform into a copy of the mesh so the triangles
		// stay cheap index/back-reference pairs.
		vertices := make([]types.Vec3, len(mesh.Vertices))
		for i, v := range mesh.Vertices {
			vertices[i] = e.Transform.MulPoint(v)
		}
		normals := make([]types.Vec3, len(mesh.Normals))
		for i, n := range mesh.Normals {
			normals[i] = e.Transform.MulDir(n).Normalize()
		}
		mesh = &geometry.Mesh{
			Name:     mesh.Name,
			Vertices: vertices,
			Normals:  normals,
			UVs:      mesh.UVs,
			Indices:  mesh.Indices,
		}
	}

	s.AddPrimitives(mesh.Triangles()...)
	return nil
}

// A LightEntity registers a single light source. Sky marks the light as the
// scene's environment fallback.
type LightEntity struct {
	Light light.Light
	Sky   bool
}

func (e *LightEntity) FillScene(s *Scene) error {
	if e.Light == nil {
		return fmt.Errorf("light entity: no light bound")
	}
	if e.Sky {
		s.SetSkyLight(e.Light)
		return nil
	}
	s.AddLight(e.Light)
	return nil
}
