package vr

import (
	"context"

	"github.com/Carmen-Shannon/oxy-vr/engine/renderer"
	"github.com/gogpu/gputypes"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ResizeEventName labels the command list region that copies an eye image to its submit size.
const ResizeEventName = "ResizeTexture"

// renderEye runs the eye's render path and replaces the eye's image with a resized copy of
// its output. Only the left path advances the scene. Caller must hold the mutex.
func (s *sessionImpl) renderEye(ctx context.Context, eye Eye, dt float32) {
	_, span := s.tracer.Start(ctx, "vr.eye", trace.WithAttributes(attribute.String("vr.eye", eye.String())))
	defer span.End()

	path := s.paths[eye]
	cam, _ := s.scn.Cameras().Get(s.entities[eye])
	path.SetCamera(cam)
	path.SetSceneUpdateEnabled(eye == EyeLeft)
	path.SetOcclusionCullingEnabled(false)
	path.PreUpdate()
	path.Update(dt)
	path.PostUpdate()
	path.Render()

	s.device.ReleaseTexture(s.eyeTextures[eye])
	s.eyeTextures[eye] = s.resizeImage(path.LastPostprocessRT(), s.width, s.height)
}

// resizeImage draws src full screen into a new width x height RGBA8 render target.
// An invalid source, or any device failure, yields an invalid texture. Caller must hold the mutex.
func (s *sessionImpl) resizeImage(src renderer.Texture, width, height uint32) renderer.Texture {
	if !src.Valid() {
		return renderer.Texture{}
	}
	log := s.log()

	target, err := s.device.CreateTexture(renderer.TextureDesc{
		Width:  width,
		Height: height,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc,
		Label:  "VR Eye Target",
	}, nil)
	if err != nil {
		log.Error("[VR] failed to create eye target", "err", err)
		return renderer.Texture{}
	}

	pass, err := s.device.CreateRenderPass(renderer.RenderPassDesc{
		Attachments: []renderer.RenderPassAttachment{{
			Texture: target,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	if err != nil {
		log.Error("[VR] failed to create resize pass", "err", err)
		s.device.ReleaseTexture(target)
		return renderer.Texture{}
	}

	cmd := s.device.BeginCommandList()
	s.device.EventBegin(ResizeEventName, cmd)
	s.device.BindViewport(renderer.Viewport{Width: float32(width), Height: float32(height)}, cmd)
	s.device.RenderPassBegin(pass, cmd)
	s.device.DrawImage(src, renderer.FullScreenImage(), cmd)
	s.device.RenderPassEnd(cmd)
	s.device.EventEnd(cmd)
	if err := s.device.SubmitCommandLists(); err != nil {
		log.Error("[VR] resize submission failed", "err", err)
	}
	return target
}
