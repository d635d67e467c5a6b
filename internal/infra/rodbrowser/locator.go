package rodbrowser

import "github.com/aalvaropc/glimpse/internal/domain"

// locatorArg is the JSON shape handed to the in-page lookup functions.
type locatorArg struct {
	Role     string `json:"role,omitempty"`
	Name     string `json:"name,omitempty"`
	Text     string `json:"text,omitempty"`
	Selector string `json:"selector,omitempty"`
	Exact    bool   `json:"exact,omitempty"`
}

func toArg(loc domain.Locator) locatorArg {
	return locatorArg{
		Role:     loc.Role,
		Name:     loc.Name,
		Text:     loc.Text,
		Selector: loc.Selector,
		Exact:    loc.Exact,
	}
}

// findJS returns every visible element matching loc, in document order.
const findJS = `function find(loc) {
  const norm = (s) => (s || '').replace(/\s+/g, ' ').trim();
  const matches = (actual, want) => {
    actual = norm(actual);
    want = norm(want);
    if (loc.exact) return actual === want;
    return actual.toLowerCase().includes(want.toLowerCase());
  };
  const visible = (el) => {
    const r = el.getBoundingClientRect();
    if (r.width === 0 && r.height === 0) return false;
    const st = window.getComputedStyle(el);
    return st.visibility !== 'hidden' && st.display !== 'none';
  };
  const textTypes = ['', 'text', 'email', 'password', 'search', 'tel', 'url', 'number'];
  const roleOf = (el) => {
    const explicit = el.getAttribute('role');
    if (explicit) return explicit.trim().split(/\s+/)[0];
    const tag = el.tagName.toLowerCase();
    switch (tag) {
      case 'a': return el.hasAttribute('href') ? 'link' : '';
      case 'button': return 'button';
      case 'h1': case 'h2': case 'h3': case 'h4': case 'h5': case 'h6': return 'heading';
      case 'textarea': return 'textbox';
      case 'select': return 'combobox';
      case 'img': return el.getAttribute('alt') === '' ? 'presentation' : 'img';
      case 'nav': return 'navigation';
      case 'main': return 'main';
      case 'ul': case 'ol': return 'list';
      case 'li': return 'listitem';
      case 'table': return 'table';
      case 'dialog': return 'dialog';
      case 'input': {
        const type = (el.getAttribute('type') || '').toLowerCase();
        if (['button', 'submit', 'reset', 'image'].includes(type)) return 'button';
        if (type === 'checkbox') return 'checkbox';
        if (type === 'radio') return 'radio';
        if (textTypes.includes(type)) return 'textbox';
        return '';
      }
    }
    return '';
  };
  const nameOf = (el) => {
    const label = el.getAttribute('aria-label');
    if (label && label.trim()) return label;
    const by = el.getAttribute('aria-labelledby');
    if (by) {
      const txt = by.split(/\s+/).map((id) => {
        const ref = document.getElementById(id);
        return ref ? ref.textContent : '';
      }).join(' ');
      if (norm(txt)) return txt;
    }
    if (el.labels && el.labels.length) {
      const txt = Array.from(el.labels).map((l) => l.textContent).join(' ');
      if (norm(txt)) return txt;
    }
    if (el.tagName === 'IMG' && el.getAttribute('alt')) return el.getAttribute('alt');
    const own = norm(el.textContent);
    if (own && el.tagName !== 'INPUT' && el.tagName !== 'TEXTAREA' && el.tagName !== 'SELECT') return own;
    if (el.value) return String(el.value);
    if (el.getAttribute('placeholder')) return el.getAttribute('placeholder');
    return el.getAttribute('title') || '';
  };

  const root = document.body || document.documentElement;
  if (!root) return [];

  let found = [];
  if (loc.selector) {
    found = Array.from(document.querySelectorAll(loc.selector));
  } else if (loc.role) {
    found = Array.from(root.querySelectorAll('*')).filter((el) =>
      roleOf(el) === loc.role && (!loc.name || matches(nameOf(el), loc.name)));
  } else if (loc.text) {
    const skip = ['SCRIPT', 'STYLE', 'NOSCRIPT', 'TEMPLATE'];
    found = Array.from(root.querySelectorAll('*')).filter((el) => {
      if (skip.includes(el.tagName)) return false;
      if (!matches(el.textContent, loc.text)) return false;
      return !Array.from(el.children).some((c) => !skip.includes(c.tagName) && matches(c.textContent, loc.text));
    });
  }
  return found.filter(visible);
}`

const countJS = `(loc) => {
  ` + findJS + `
  return find(loc).length;
}`

const firstJS = `(loc) => {
  ` + findJS + `
  const all = find(loc);
  return all.length ? all[0] : null;
}`

const hrefJS = `() => window.location.href`
