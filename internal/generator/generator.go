// Package generator turns a types.ComponentStructure into the source of a
// self-registering custom element. Output is a pure function of its inputs.
package generator

import (
	"strings"
	"text/template"

	"github.com/conneroisu/livedocs/internal/types"
)

// SheetCacheGlobal is the globalThis property holding stylesheets adopted by
// every generated element on a page.
const SheetCacheGlobal = "__livedocsSheets"

var jsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"</", `<\/`,
)

// EscapeJS escapes s for use inside a single-quoted JavaScript string that is
// itself embedded in a script element.
func EscapeJS(s string) string {
	return jsEscaper.Replace(s)
}

// PascalCase converts a hyphenated tag name into a class identifier:
// "button-preview" becomes "ButtonPreview".
func PascalCase(tag string) string {
	var b strings.Builder
	for _, part := range strings.Split(tag, "-") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

type templateData struct {
	Name           string
	Tag            string
	ClassName      string
	Variants       []types.ClassEntry
	Sizes          []types.ClassEntry
	Base           string
	Disabled       string
	DefaultVariant string
	DefaultSize    string
	Observed       []string
	SheetCache     string
}

var elementTemplate = template.Must(template.New("element").Funcs(template.FuncMap{
	"jsstr": EscapeJS,
}).Parse(`// <{{jsstr .Tag}}> generated from {{jsstr .Name}}
(() => {
  if (typeof window === 'undefined' || typeof document === 'undefined' ||
      typeof customElements === 'undefined' || typeof HTMLElement === 'undefined') {
    return;
  }
  if (customElements.get('{{jsstr .Tag}}')) {
    return;
  }

  const variantClasses = {
{{- range .Variants}}
    '{{jsstr .Key}}': '{{jsstr .Classes}}',
{{- end}}
  };
  const sizeClasses = {
{{- range .Sizes}}
    '{{jsstr .Key}}': '{{jsstr .Classes}}',
{{- end}}
  };
  const baseClasses = '{{jsstr .Base}}';
  const disabledClasses = '{{jsstr .Disabled}}';
  const defaultVariant = '{{jsstr .DefaultVariant}}';
  const defaultSize = '{{jsstr .DefaultSize}}';

  const pageSheets = () => {
    if (!globalThis.{{.SheetCache}}) {
      const sheets = [];
      if (typeof CSSStyleSheet !== 'undefined') {
        for (const sheet of Array.from(document.styleSheets)) {
          try {
            const text = Array.from(sheet.cssRules).map((rule) => rule.cssText).join('\n');
            const copy = new CSSStyleSheet();
            copy.replaceSync(text);
            sheets.push(copy);
          } catch (err) {
            // cross-origin stylesheets are not readable
          }
        }
      }
      globalThis.{{.SheetCache}} = sheets;
    }
    return globalThis.{{.SheetCache}};
  };

  const pick = (table, key, fallback) =>
    key !== null && Object.prototype.hasOwnProperty.call(table, key) ? key : fallback;

  class {{.ClassName}} extends HTMLElement {
    static get observedAttributes() {
      return [{{range $i, $a := .Observed}}{{if $i}}, {{end}}'{{jsstr $a}}'{{end}}];
    }

    constructor() {
      super();
      this.attachShadow({ mode: 'open' });
      this._adopted = false;
    }

    connectedCallback() {
      if (!this._adopted) {
        this._adopted = true;
        if ('adoptedStyleSheets' in this.shadowRoot) {
          this.shadowRoot.adoptedStyleSheets = pageSheets();
        }
      }
      this.render();
    }

    attributeChangedCallback() {
      if (this.isConnected) {
        this.render();
      }
    }

    render() {
      const variant = pick(variantClasses, this.getAttribute('variant'), defaultVariant);
      const size = pick(sizeClasses, this.getAttribute('size'), defaultSize);
      const loading = this.hasAttribute('loading');
      const disabled = loading || this.hasAttribute('disabled');

      const classes = [
        baseClasses,
        variantClasses[variant],
        sizeClasses[size],
        disabled ? disabledClasses : '',
      ].filter(Boolean).join(' ');

      const button = document.createElement('button');
      button.className = classes;
      button.disabled = disabled;
      button.setAttribute('aria-disabled', String(disabled));

      if (loading) {
        button.setAttribute('aria-busy', 'true');
        const marker = document.createElement('span');
        marker.className = 'loading-marker';
        marker.textContent = 'Loading...';
        button.appendChild(marker);
      } else {
        button.appendChild(document.createElement('slot'));
      }

      this.shadowRoot.replaceChildren(button);
    }
  }

  customElements.define('{{jsstr .Tag}}', {{.ClassName}});
})();
`))

// WebComponent renders the custom element definition for structure under tag.
func WebComponent(structure *types.ComponentStructure, tag string) string {
	data := templateData{
		Name:           structure.Name,
		Tag:            tag,
		ClassName:      PascalCase(tag),
		Variants:       structure.Variants.Entries(),
		Sizes:          structure.Sizes.Entries(),
		Base:           structure.BaseClasses,
		Disabled:       structure.DisabledClasses,
		DefaultVariant: structure.DefaultVariant,
		DefaultSize:    structure.DefaultSize,
		Observed:       structure.ObservedAttributes,
		SheetCache:     SheetCacheGlobal,
	}

	var b strings.Builder
	// The template only ranges over in-memory slices and cannot fail.
	if err := elementTemplate.Execute(&b, data); err != nil {
		panic(err)
	}
	return b.String()
}

// Artifact wraps WebComponent with the metadata the build and dev server need.
func Artifact(structure *types.ComponentStructure, tag string) *types.Artifact {
	attrs := make([]string, len(structure.ObservedAttributes))
	copy(attrs, structure.ObservedAttributes)

	return &types.Artifact{
		TagName:     tag,
		Code:        WebComponent(structure, tag),
		ClassesUsed: structure.ClassesUsed(),
		Attributes:  attrs,
	}
}
