package gateway

import "fmt"

func buildExtractPrompt() string {
	return `You are performing OCR (Optical Character Recognition) on an image.

Extract ALL visible text from the image exactly as it appears, preserving line breaks,
capitalization, punctuation and the reading order of the text.

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not add commentary, formatting, labels or phrases like
"Here is the text:". If the image contains no text, respond with an empty message.`
}

func buildTranslatePrompt(text, targetLanguage string) string {
	return fmt.Sprintf(`Translate the following text to %s. Provide only the translated text, with no additional explanation or context.

Text to translate:
"""
%s
"""`, targetLanguage, text)
}

func buildCombinedPrompt(targetLanguage string) string {
	return fmt.Sprintf(`You are an OCR and translation engine. Read ALL visible text in the image and translate it to %s.

INSTRUCTIONS:
1. Transcribe the text exactly as it appears, top to bottom, preserving line breaks
2. Provide a cleaned up version with paragraphs and lists restored as structured_text
3. Identify the language(s) of the original text
4. Translate the text to %s without adding commentary
5. List any sections you could not read reliably

OUTPUT FORMAT:
Respond with ONLY a JSON object in the following format:

{
  "status": "success",
  "extracted_text": {
    "original_language": "...",
    "raw_text": "...",
    "structured_text": "..."
  },
  "translated_text": {
    "language": "%s",
    "content": "..."
  },
  "metadata": {
    "confidence": "high" | "medium" | "low",
    "unclear_sections": ["..."],
    "detected_languages": ["..."]
  }
}`, targetLanguage, targetLanguage, targetLanguage)
}
