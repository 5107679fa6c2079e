// Package lod adapts panorama rendering detail to the frame rate.
//
// A Monitor listens to the render passes of a panorama and times a sample
// of them. When the recent average is slower than the target frame time it
// raises the maximum texture magnification, so faces are tessellated less
// and coarser tiles are drawn; when frames are fast it lowers it again.
// Each adjustment is a single step of 1+Rate, bounded by MinMag and MaxMag.
//
// Once rendering has been idle for HQRenderDelay, the monitor draws one
// high-quality pass at HQRenderMag so that the resting view is sharp.
//
//	m, err := lod.NewMonitor(params.LOD, pan, loop)
//	if err != nil {
//		return err
//	}
//	pan.OnRender(m.Listener)
package lod
