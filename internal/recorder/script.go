package recorder

// captureScript is evaluated in every page the recorder drives. It buffers
// trusted DOM events together with a snapshot of the target element's
// attributes; the Go side drains the buffer on a short interval. The
// JSON field names mirror dom.RawEvent / dom.Element.
func captureScript() string {
	return `
(function() {
	if (window.__rpascribe) return;

	window.__rpascribe = {
		events: [],

		add: function(ev) {
			this.events.push(ev);
		},

		drain: function() {
			const events = [...this.events];
			this.events = [];
			return events;
		},

		count: function(selector) {
			try {
				return document.querySelectorAll(selector).length;
			} catch (e) {
				return 0;
			}
		},

		nthOfType: function(el) {
			let nth = 1, total = 0;
			const parent = el.parentElement;
			if (!parent) return {nth: 1, total: 1};
			for (const sib of parent.children) {
				if (sib.tagName === el.tagName) {
					total++;
					if (sib === el) nth = total;
				}
			}
			return {nth: nth, total: total};
		},

		describe: function(el) {
			if (!el || el.nodeType !== Node.ELEMENT_NODE) return null;

			const tag = el.tagName.toLowerCase();
			const rect = el.getBoundingClientRect();
			const style = window.getComputedStyle(el);

			const dataAttrs = {};
			for (const attr of el.attributes) {
				if (attr.name.startsWith('data-')) {
					dataAttrs[attr.name] = attr.value;
				}
			}

			const ancestors = [];
			let p = el.parentElement;
			let depth = 0;
			while (p && p.tagName && depth < 6) {
				const t = p.tagName.toLowerCase();
				if (t === 'body' || t === 'html') break;
				const pos = this.nthOfType(p);
				ancestors.push({
					tag: t,
					classes: p.className && typeof p.className === 'string'
						? p.className.trim().split(/\s+/).filter(Boolean) : [],
					nth_of_type: pos.nth,
					same_tag_siblings: pos.total
				});
				p = p.parentElement;
				depth++;
			}

			const pos = this.nthOfType(el);
			let text = '';
			if (tag !== 'input' && tag !== 'textarea' && tag !== 'select') {
				text = (el.textContent || '').trim().slice(0, 200);
			}

			return {
				tag: tag,
				id: el.id || '',
				classes: el.className && typeof el.className === 'string'
					? el.className.trim().split(/\s+/).filter(Boolean) : [],
				name: el.getAttribute('name') || '',
				type: el.getAttribute('type') || '',
				role: el.getAttribute('role') || '',
				aria_label: el.getAttribute('aria-label') || '',
				data_attrs: dataAttrs,
				placeholder: el.getAttribute('placeholder') || '',
				value: el.value !== undefined ? String(el.value) : '',
				text: text,
				content_editable: el.isContentEditable === true,
				visible: rect.width > 0 && rect.height > 0 && style.visibility !== 'hidden',
				has_click_handler: typeof el.onclick === 'function',
				pointer_cursor: style.cursor === 'pointer',
				in_form: el.closest('form') !== null,
				in_menu: el.closest('[role="menu"],[role="menuitem"],[role="listbox"],.dropdown,.menu') !== null,
				rect: {x: rect.left + window.scrollX, y: rect.top + window.scrollY,
					width: rect.width, height: rect.height},
				ancestors: ancestors,
				nth_of_type: pos.nth,
				same_tag_siblings: pos.total
			};
		}
	};

	const R = window.__rpascribe;

	document.addEventListener('click', function(event) {
		if (!event.isTrusted) return;
		R.add({
			kind: 'click',
			timestamp: Date.now(),
			element: R.describe(event.target),
			client_x: Math.round(event.clientX),
			client_y: Math.round(event.clientY),
			url: location.href
		});
	}, true);

	document.addEventListener('input', function(event) {
		if (!event.isTrusted || !event.target.tagName) return;
		const el = event.target;
		R.add({
			kind: 'input',
			timestamp: Date.now(),
			element: R.describe(el),
			value: el.value !== undefined ? String(el.value) : (el.textContent || ''),
			url: location.href
		});
	}, true);

	document.addEventListener('keydown', function(event) {
		if (!event.isTrusted) return;
		R.add({
			kind: 'keydown',
			timestamp: Date.now(),
			element: R.describe(event.target),
			key: event.key,
			ctrl: event.ctrlKey,
			shift: event.shiftKey,
			alt: event.altKey,
			meta: event.metaKey,
			url: location.href
		});
	}, true);

	document.addEventListener('scroll', function(event) {
		if (!event.isTrusted) return;
		R.add({
			kind: 'scroll',
			timestamp: Date.now(),
			scroll_x: Math.round(window.scrollX),
			scroll_y: Math.round(window.scrollY),
			url: location.href
		});
	}, true);

	document.addEventListener('mouseenter', function(event) {
		if (!event.isTrusted || !event.target.tagName) return;
		R.add({
			kind: 'mouseenter',
			timestamp: Date.now(),
			element: R.describe(event.target),
			url: location.href
		});
	}, true);

	document.addEventListener('blur', function(event) {
		if (!event.isTrusted || !event.target.tagName) return;
		const el = event.target;
		R.add({
			kind: 'blur',
			timestamp: Date.now(),
			element: R.describe(el),
			value: el.value !== undefined ? String(el.value) : (el.textContent || ''),
			url: location.href
		});
	}, true);

	document.addEventListener('submit', function(event) {
		if (!event.isTrusted) return;
		const form = event.target;
		R.add({
			kind: 'submit',
			timestamp: Date.now(),
			element: R.describe(form),
			form_action: form.getAttribute ? (form.getAttribute('action') || '') : '',
			form_method: form.getAttribute ? (form.getAttribute('method') || '') : '',
			url: location.href
		});
	}, true);
})();
`
}
