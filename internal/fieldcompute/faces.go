// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fieldcompute

import "github.com/go-gl/mathgl/mgl32"

// Mesh is a triangle soup: every three consecutive positions form one
// triangle, counter-clockwise when viewed from outside the surface.
// Normals are per vertex, taken from the field gradient.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
}

// TriangleCount returns the number of triangles in the soup.
func (m *Mesh) TriangleCount() int { return len(m.Positions) / 3 }

// axisUnits are the canonical grid directions, indexed like the shader's
// units array.
var axisUnits = [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// GenerateFaces expands each compacted cell into up to three quads, one
// per canonical edge direction, exactly as shaders/faces.wgsl does from
// the same list. The active list is the only source of candidate cells;
// no cell outside it is visited.
//
// For the edge leaving cell (x,y,z) along axis a, the quad links the
// vertices of the four cells sharing that edge: the cell itself, then the
// neighbors at -e_b, -e_b-e_c, and -e_c where b=(a+1)%3 and c=(a+2)%3.
// Visited in that order the quad winds counter-clockwise seen from +a, so
// the winding flips when the edge start corner is the inside one. Edges
// without a sign change, edges on the b==0 or c==0 boundary planes, and
// quads touching a non-surface cell are skipped.
func GenerateFaces(g Grid, vol *Volume, cells *CellGrid, active []uint32) *Mesh {
	mesh := &Mesh{}
	for _, ci := range active {
		x, y, z := cells.Coords(int(ci))
		cell := [3]int{x, y, z}
		va := vol.At(x, y, z)

		for a := 0; a < 3; a++ {
			b := (a + 1) % 3
			c := (a + 2) % 3
			if cell[b] == 0 || cell[c] == 0 {
				continue
			}
			ea := axisUnits[a]
			vb := vol.At(x+ea[0], y+ea[1], z+ea[2])
			if (va < 0) == (vb < 0) {
				continue
			}

			eb, ec := axisUnits[b], axisUnits[c]
			quad := [4][3]int{
				cell,
				{cell[0] - eb[0], cell[1] - eb[1], cell[2] - eb[2]},
				{cell[0] - eb[0] - ec[0], cell[1] - eb[1] - ec[1], cell[2] - eb[2] - ec[2]},
				{cell[0] - ec[0], cell[1] - ec[1], cell[2] - ec[2]},
			}
			var pos [4]mgl32.Vec3
			var nrm [4]mgl32.Vec3
			ok := true
			for i, q := range quad {
				idx := cells.Index(q[0], q[1], q[2])
				if !cells.Flags[idx] {
					ok = false
					break
				}
				pos[i] = cells.Verts[idx]
				nrm[i] = CellNormal(vol, q[0], q[1], q[2])
			}
			if !ok {
				continue
			}

			if va < 0 {
				mesh.emit(pos, nrm, 0, 1, 2)
				mesh.emit(pos, nrm, 0, 2, 3)
			} else {
				mesh.emit(pos, nrm, 0, 2, 1)
				mesh.emit(pos, nrm, 0, 3, 2)
			}
		}
	}
	return mesh
}

func (m *Mesh) emit(pos, nrm [4]mgl32.Vec3, i, j, k int) {
	m.Positions = append(m.Positions, pos[i], pos[j], pos[k])
	m.Normals = append(m.Normals, nrm[i], nrm[j], nrm[k])
}
