package gemini

// Instruction 固定的编辑指令，不接受用户配置
const Instruction = `
[TASK]
Remove ALL text, subtitles, watermarks, and advertising banners from this image.

[CRITICAL INSTRUCTION]
Pay special attention to text that is placed OVER human faces, bodies, hair, or eyes.
Do NOT blur the faces; instead, remove only the text and reconstruct the hidden features (skin texture, facial features, hair strands) using inpainting techniques.

[QUALITY REQUIREMENTS]
- The result must look like a clean, original photograph without any traces of editing.
- Match the surrounding lighting, grain, and color perfectly.
- Reconstruct complex backgrounds (nature, cityscapes, patterned clothing) where the text was located.
- Ensure high resolution and sharp details in the inpainted areas.

[OUTPUT]
Please process this request and return the edited image.
`
