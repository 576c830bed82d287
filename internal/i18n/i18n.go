package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang 界面语言
type Lang string

const (
	Korean  Lang = "ko"
	English Lang = "en"
)

// 第一个为默认语言
var supported = []language.Tag{language.Korean, language.English}

var matcher = language.NewMatcher(supported)

var messages = map[Lang]map[string]string{
	Korean: {
		"title":           "AI 자막 제거기",
		"subtitle":        "이미지를 업로드하고 AI가 마법처럼 글자를 지우는 것을 경험하세요.",
		"uploadBtn":       "이미지 업로드",
		"uploadHint":      "클릭하여 이미지를 선택하세요",
		"fileTypes":       "PNG, JPG, GIF 최대 10MB",
		"originalTitle":   "원본 이미지",
		"cleanedTitle":    "결과 이미지",
		"processing":      "처리 중...",
		"readyTitle":      "자막을 제거할 준비가 되셨나요?",
		"readyText":       "아래 버튼을 눌러 AI 작업을 시작하세요.",
		"removeBtn":       "자막 제거하기",
		"downloadBtn":     "이미지 다운로드",
		"resetBtn":        "다시 시작하기",
		"errorValidImage": "유효한 이미지 파일(PNG, JPG 등)을 업로드해주세요.",
		"errorUnknown":    "알 수 없는 오류가 발생했습니다.",
		"errorTooLarge":   "이미지 파일이 너무 큽니다.",
		"footer":          "Gemini AI 제공",
		"generating":      "생성 중...",
	},
	English: {
		"title":           "AI Subtitle Remover",
		"subtitle":        "Upload an image and let AI magically erase the text.",
		"uploadBtn":       "Upload Image",
		"uploadHint":      "Click to upload an image",
		"fileTypes":       "PNG, JPG, GIF up to 10MB",
		"originalTitle":   "Original Image",
		"cleanedTitle":    "Cleaned Image",
		"processing":      "Processing...",
		"readyTitle":      "Ready to Remove Subtitles?",
		"readyText":       "Click the button below to start the AI process.",
		"removeBtn":       "Remove Subtitles",
		"downloadBtn":     "Download Image",
		"resetBtn":        "Start Over",
		"errorValidImage": "Please upload a valid image file (PNG, JPG, etc.).",
		"errorUnknown":    "An unknown error occurred.",
		"errorTooLarge":   "The image file is too large.",
		"footer":          "Powered by Gemini AI",
		"generating":      "Generating...",
	},
}

// Parse 解析 "ko"、"en-US" 这类取值，无法识别时返回 false
func Parse(s string) (Lang, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "ko":
		return Korean, true
	case "en":
		return English, true
	}
	return "", false
}

// Negotiate 优先使用显式指定的语言，其次是 Accept-Language，最后是 fallback
func Negotiate(explicit, acceptLanguage string, fallback Lang) Lang {
	if lang, ok := Parse(explicit); ok {
		return lang
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			_, idx, confidence := matcher.Match(tags...)
			if confidence != language.No {
				return fromTag(supported[idx])
			}
		}
	}
	if _, ok := messages[fallback]; ok {
		return fallback
	}
	return Korean
}

func fromTag(tag language.Tag) Lang {
	if tag == language.English {
		return English
	}
	return Korean
}

// T 返回指定语言的文案，缺失时回退到英文，再缺失时返回 key 本身
func T(lang Lang, key string) string {
	if msg, ok := messages[lang][key]; ok {
		return msg
	}
	if msg, ok := messages[English][key]; ok {
		return msg
	}
	return key
}

// Messages 返回某个语言的全部文案，供页面模板使用
func Messages(lang Lang) map[string]string {
	out := make(map[string]string, len(messages[English]))
	for k := range messages[English] {
		out[k] = T(lang, k)
	}
	return out
}
