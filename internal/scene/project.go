package scene

// Project computes every derived screen-space field for a width x height frame:
// vertex Win/Dist/Clipped, face normals, halo centres and radii, and lamp screen
// positions. It must be called before rendering and not during.
func (s *Scene) Project(width, height int) {
	cam := &s.Camera
	cam.setup(width, height)

	for i := range s.Verts {
		v := &s.Verts[i]
		win, d, ok := cam.ToScreen(v.Co)
		v.Win, v.Dist, v.Clipped = win, d, !ok
	}

	for i := range s.Faces {
		f := &s.Faces[i]
		f.Normal = [3]float64{}
		if len(f.Verts) < 3 {
			continue
		}
		a, b, c, ok := s.Corners(FaceIndex(i))
		if !ok {
			continue
		}
		n := s.Verts[b].Co.Sub(s.Verts[a].Co).Cross(s.Verts[c].Co.Sub(s.Verts[a].Co))
		if n.Len() > 0 {
			f.Normal = n.Normalize()
		}
	}

	for i := range s.Halos {
		h := &s.Halos[i]
		win, d, ok := cam.ToScreen(h.Co)
		h.Clipped = !ok
		if !ok {
			continue
		}
		h.X, h.Y, h.Z, h.Dist = win[0], win[1], win[2], d
		h.Radius = h.Size * cam.scale
		if !cam.Ortho {
			h.Radius /= d
		}
	}

	for i := range s.Lamps {
		l := &s.Lamps[i]
		l.Visible = false
		if l.Kind == LampSun || l.Kind == LampHemi {
			continue
		}
		win, _, ok := cam.ToScreen(l.Co)
		if ok {
			l.X, l.Y, l.Visible = win[0], win[1], true
		}
	}
}
