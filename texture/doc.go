// Package texture uploads tile images to the GPU.
//
// Uploader converts any image.Image to tightly packed RGBA8 and creates a
// texture through a gpucontext.TextureCreator. Textures are released with
// Release, which calls the texture's Destroy method.
//
// NewMemoryUploader keeps textures in host memory for headless use and tests.
package texture
