package content

import (
	"regexp"

	"github.com/samber/lo"
)

// TagExtractor извлекает теги из текста. Сервисы получают его при создании
// и не знают синтаксиса тегов.
type TagExtractor func(content string) []string

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// Hashtags возвращает слова, начинающиеся с '#', без самого символа.
// Повторы удаляются, порядок первого вхождения сохраняется.
func Hashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	tags := lo.Map(matches, func(m []string, _ int) string {
		return m[1]
	})
	return lo.Uniq(tags)
}

// Tags применяет extractor и нормализует результат в множество без пустых значений.
func Tags(extract TagExtractor, content string) []string {
	if extract == nil {
		return []string{}
	}
	tags := lo.Filter(extract(content), func(t string, _ int) bool {
		return t != ""
	})
	return lo.Uniq(tags)
}
