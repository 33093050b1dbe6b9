package speech

import (
	"encoding/xml"
	"strings"

	"github.com/femoon/tts-azure-web/backend/internal/model/speech"
)

const ssmlContentType = "application/ssml+xml"

// BuildSSML 将合成请求渲染为 Azure 可接受的 SSML。
// 不做字段校验：缺失的字段会原样产出空属性，由上游拒绝。
// style/role 为空时不输出对应属性。
func BuildSSML(req speech.SynthesisRequest) string {
	cfg := req.Config

	var b strings.Builder
	b.WriteString("<speak version='1.0' xml:lang='")
	b.WriteString(escapeXML(cfg.Lang))
	b.WriteString("'><voice xml:lang='")
	b.WriteString(escapeXML(cfg.Lang))
	b.WriteString("' xml:gender='")
	b.WriteString(escapeXML(cfg.Gender))
	b.WriteString("' name='")
	b.WriteString(escapeXML(cfg.VoiceName))
	b.WriteString("'")
	writeOptionalAttr(&b, "xml:style", cfg.Style)
	writeOptionalAttr(&b, "xml:role", cfg.Role)
	b.WriteString(">")
	b.WriteString(escapeXML(req.Input))
	b.WriteString("</voice></speak>")
	return b.String()
}

func writeOptionalAttr(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString("='")
	b.WriteString(escapeXML(value))
	b.WriteString("'")
}

func escapeXML(s string) string {
	var b strings.Builder
	// strings.Builder never returns a write error
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
