package jsengine

// SizzleSource is a small Sizzle work-alike backed by querySelectorAll.
const SizzleSource = `(function(window, document) {
	var Sizzle = function(selector, context, results) {
		context = context || document;
		results = results || [];
		if (!context || typeof context.querySelectorAll !== 'function') {
			return results;
		}
		var found = context.querySelectorAll(selector);
		for (var i = 0; i < found.length; i++) {
			results.push(found[i]);
		}
		return results;
	};
	Sizzle.matches = function(expr, elements) {
		return elements.filter(function(e) { return e.matches(expr); });
	};
	Sizzle.matchesSelector = function(element, expr) {
		return element.matches(expr);
	};
	Sizzle.version = 'offline';
	window.Sizzle = Sizzle;
})(window, document);`

// JQuerySource is a jQuery work-alike covering traversal, accessors, class
// helpers, effects (applied instantly) and events.
const JQuerySource = `(function(window, document) {
	var dataStore = new Map();
	var eventStore = new Map();

	function isString(v) { return typeof v === 'string'; }
	function isFunction(v) { return typeof v === 'function'; }

	function toArray(list) {
		var out = [];
		if (!list) { return out; }
		for (var i = 0; i < list.length; i++) { out.push(list[i]); }
		return out;
	}

	function uniqueSorted(list) {
		var out = [];
		for (var i = 0; i < list.length; i++) {
			if (list[i] && out.indexOf(list[i]) === -1) { out.push(list[i]); }
		}
		return out.sort(function(a, b) { return (a.sourceIndex || 0) - (b.sourceIndex || 0); });
	}

	function matches(el, selector) {
		if (!selector) { return true; }
		if (isFunction(selector)) { return !!selector.call(el); }
		if (!isString(selector)) {
			return jQuery(selector).toArray().indexOf(el) !== -1;
		}
		return !!el && el.nodeType === 1 && el.matches(selector);
	}

	function filterBy(list, selector) {
		return list.filter(function(el) { return matches(el, selector); });
	}

	function isElement(el) { return !!el && el.nodeType === 1; }

	function jQuery(selector, context) {
		return new Init(selector, context);
	}

	function Init(selector, context) {
		var els = [];
		if (!selector) {
			els = [];
		} else if (selector instanceof Init) {
			els = selector.toArray();
		} else if (isString(selector)) {
			var contexts = context === undefined || context === null ? [document] : jQuery(context).toArray();
			for (var i = 0; i < contexts.length; i++) {
				els = els.concat(toArray(contexts[i].querySelectorAll(selector)));
			}
			if (contexts.length > 1) { els = uniqueSorted(els); }
		} else if (selector.nodeType) {
			els = [selector];
		} else if (typeof selector.length === 'number') {
			els = toArray(selector);
		}
		for (var j = 0; j < els.length; j++) { this[j] = els[j]; }
		this.length = els.length;
	}

	var fn = Init.prototype;
	jQuery.fn = fn;
	fn.jquery = 'offline';

	function pushStack(prev, els) {
		var ret = jQuery(els);
		ret.prevObject = prev;
		return ret;
	}

	function collect(set, step, selector, until, filter) {
		var out = [];
		set.each(function() {
			var found = step(this);
			for (var i = 0; i < found.length; i++) {
				if (until && matches(found[i], until)) { break; }
				out.push(found[i]);
			}
		});
		return pushStack(set, filterBy(uniqueSorted(out), until !== undefined ? filter : selector));
	}

	function walkUp(el) {
		var out = [];
		var cur = el.parentNode;
		while (isElement(cur)) { out.push(cur); cur = cur.parentNode; }
		return out;
	}

	function walkSibling(el, prop) {
		var out = [];
		var cur = el[prop];
		while (cur) { out.push(cur); cur = cur[prop]; }
		return out;
	}

	fn.toArray = function() { return Array.prototype.slice.call(this, 0, this.length); };
	fn.get = function(i) {
		if (i === undefined) { return this.toArray(); }
		return i < 0 ? this[this.length + i] : this[i];
	};
	fn.each = function(cb) {
		for (var i = 0; i < this.length; i++) {
			if (cb.call(this[i], i, this[i]) === false) { break; }
		}
		return this;
	};
	fn.map = function(cb) {
		var out = [];
		for (var i = 0; i < this.length; i++) { out.push(cb.call(this[i], i, this[i])); }
		return pushStack(this, out.filter(function(v) { return v !== null && v !== undefined; }));
	};
	fn.eq = function(i) {
		var el = this.get(i);
		return pushStack(this, el ? [el] : []);
	};
	fn.first = function() { return this.eq(0); };
	fn.last = function() { return this.eq(-1); };
	fn.slice = function(start, end) {
		return pushStack(this, Array.prototype.slice.apply(this.toArray(), arguments));
	};
	fn.end = function() { return this.prevObject || jQuery(); };

	fn.find = function(selector) {
		var out = [];
		this.each(function() { out = out.concat(toArray(this.querySelectorAll(selector))); });
		return pushStack(this, uniqueSorted(out));
	};
	fn.children = function(selector) {
		return collect(this, function(el) { return toArray(el.children); }, selector);
	};
	fn.contents = function() {
		return collect(this, function(el) { return toArray(el.children); });
	};
	fn.parent = function(selector) {
		return collect(this, function(el) { return isElement(el.parentNode) ? [el.parentNode] : []; }, selector);
	};
	fn.parents = function(selector) {
		return collect(this, walkUp, selector);
	};
	fn.parentsUntil = function(until, filter) {
		return collect(this, walkUp, undefined, until || undefined, filter);
	};
	fn.closest = function(selector, context) {
		var ctx = context ? jQuery(context).toArray() : [];
		var out = [];
		this.each(function() {
			var cur = this;
			while (isElement(cur) && ctx.indexOf(cur) === -1) {
				if (matches(cur, selector)) { out.push(cur); break; }
				cur = cur.parentNode;
			}
		});
		return pushStack(this, uniqueSorted(out));
	};
	fn.offsetParent = function() {
		return collect(this, function(el) {
			var p = el.parentNode;
			return [isElement(p) ? p : document.documentElement];
		});
	};
	fn.siblings = function(selector) {
		return collect(this, function(el) {
			return isElement(el.parentNode)
				? toArray(el.parentNode.children).filter(function(s) { return s !== el; })
				: [];
		}, selector);
	};
	fn.next = function(selector) {
		return collect(this, function(el) { return el.nextElementSibling ? [el.nextElementSibling] : []; }, selector);
	};
	fn.prev = function(selector) {
		return collect(this, function(el) { return el.previousElementSibling ? [el.previousElementSibling] : []; }, selector);
	};
	fn.nextAll = function(selector) {
		return collect(this, function(el) { return walkSibling(el, 'nextElementSibling'); }, selector);
	};
	fn.prevAll = function(selector) {
		return collect(this, function(el) { return walkSibling(el, 'previousElementSibling'); }, selector);
	};
	fn.nextUntil = function(until, filter) {
		return collect(this, function(el) { return walkSibling(el, 'nextElementSibling'); }, undefined, until || undefined, filter);
	};
	fn.prevUntil = function(until, filter) {
		return collect(this, function(el) { return walkSibling(el, 'previousElementSibling'); }, undefined, until || undefined, filter);
	};
	fn.filter = function(selector) {
		return pushStack(this, filterBy(this.toArray(), selector));
	};
	fn.not = function(selector) {
		return pushStack(this, this.toArray().filter(function(el) { return !matches(el, selector); }));
	};
	fn.is = function(selector) {
		return filterBy(this.toArray(), selector).length > 0;
	};
	fn.has = function(selector) {
		return pushStack(this, this.toArray().filter(function(el) {
			return el.querySelectorAll(selector).length > 0;
		}));
	};
	fn.add = function(selector, context) {
		return pushStack(this, uniqueSorted(this.toArray().concat(jQuery(selector, context).toArray())));
	};
	fn.addBack = function(selector) {
		var prev = this.prevObject ? filterBy(this.prevObject.toArray(), selector) : [];
		return pushStack(this, uniqueSorted(this.toArray().concat(prev)));
	};
	fn.andSelf = fn.addBack;

	function access(set, value, get, put) {
		if (value === undefined) {
			return set.length ? get(set[0]) : undefined;
		}
		return set.each(function(i) { put(this, isFunction(value) ? value.call(this, i, get(this)) : value); });
	}

	fn.text = function(value) {
		if (value === undefined) {
			return this.toArray().map(function(el) { return el.textContent; }).join('');
		}
		return this.each(function() { this.textContent = String(value); });
	};
	fn.html = function(value) {
		return access(this, value, function(el) { return el.innerHTML; }, function(el, v) { el.innerHTML = String(v); });
	};
	fn.attr = function(name, value) {
		return access(this, value, function(el) {
			var v = el.getAttribute(name);
			return v === null ? undefined : v;
		}, function(el, v) {
			if (v === null) { el.removeAttribute(name); } else { el.setAttribute(name, String(v)); }
		});
	};
	fn.removeAttr = function(name) {
		return this.each(function() { this.removeAttribute(name); });
	};
	fn.prop = function(name, value) {
		return access(this, value, function(el) { return el[name]; }, function(el, v) { el[name] = v; });
	};
	fn.val = function(value) {
		return access(this, value, function(el) { return el.value; }, function(el, v) { el.value = String(v); });
	};

	function parseStyle(el) {
		var out = {};
		(el.getAttribute('style') || '').split(';').forEach(function(decl) {
			var i = decl.indexOf(':');
			if (i > 0) { out[decl.slice(0, i).trim()] = decl.slice(i + 1).trim(); }
		});
		return out;
	}

	function writeStyle(el, style) {
		var parts = [];
		for (var k in style) {
			if (style[k] !== '' && style[k] !== undefined && style[k] !== null) { parts.push(k + ': ' + style[k]); }
		}
		if (parts.length) { el.setAttribute('style', parts.join('; ')); } else { el.removeAttribute('style'); }
	}

	function cssName(name) {
		return name.replace(/[A-Z]/g, function(c) { return '-' + c.toLowerCase(); });
	}

	function pixels(v) {
		return typeof v === 'number' ? v + 'px' : String(v);
	}

	fn.css = function(name, value) {
		name = cssName(name);
		return access(this, value, function(el) { return parseStyle(el)[name]; }, function(el, v) {
			var style = parseStyle(el);
			style[name] = pixels(v);
			writeStyle(el, style);
		});
	};

	function dimension(prop) {
		return function(value) {
			return access(this, value, function(el) {
				var v = parseFloat(parseStyle(el)[prop]);
				if (isNaN(v)) { v = parseFloat(el.getAttribute(prop)); }
				return isNaN(v) ? 0 : v;
			}, function(el, v) {
				var style = parseStyle(el);
				style[prop] = pixels(v);
				writeStyle(el, style);
			});
		};
	}

	fn.width = dimension('width');
	fn.height = dimension('height');
	fn.innerWidth = dimension('width');
	fn.innerHeight = dimension('height');
	fn.outerWidth = function(includeMargin) {
		if (typeof includeMargin === 'boolean' || includeMargin === undefined) { return this.width(); }
		return this.width(includeMargin);
	};
	fn.outerHeight = function(includeMargin) {
		if (typeof includeMargin === 'boolean' || includeMargin === undefined) { return this.height(); }
		return this.height(includeMargin);
	};

	function coordinates(el) {
		var style = parseStyle(el);
		return { top: parseFloat(style.top) || 0, left: parseFloat(style.left) || 0 };
	}

	fn.position = function() { return this.length ? coordinates(this[0]) : undefined; };
	fn.offset = function() { return this.length ? coordinates(this[0]) : undefined; };

	function store(el) {
		var d = dataStore.get(el);
		if (!d) { d = {}; dataStore.set(el, d); }
		return d;
	}

	function scroller(key) {
		return function(value) {
			return access(this, value, function(el) { return store(el)[key] || 0; }, function(el, v) { store(el)[key] = Number(v); });
		};
	}

	fn.scrollLeft = scroller('__scrollLeft');
	fn.scrollTop = scroller('__scrollTop');

	function dataValue(raw) {
		if (raw === 'true') { return true; }
		if (raw === 'false') { return false; }
		if (raw === 'null') { return null; }
		if (raw !== '' && String(Number(raw)) === raw) { return Number(raw); }
		return raw;
	}

	fn.data = function(key, value) {
		if (value === undefined) {
			if (!this.length) { return undefined; }
			var d = store(this[0]);
			if (Object.prototype.hasOwnProperty.call(d, key)) { return d[key]; }
			var raw = this[0].getAttribute('data-' + cssName(key));
			return raw === null ? undefined : dataValue(raw);
		}
		return this.each(function() { store(this)[key] = value; });
	};
	fn.removeData = function(key) {
		return this.each(function() {
			if (key === undefined) { dataStore.delete(this); } else { delete store(this)[key]; }
		});
	};

	function classes(el) {
		return (el.className || '').split(/\s+/).filter(function(c) { return c !== ''; });
	}

	function eachClass(names, cb) {
		String(names).split(/\s+/).filter(function(c) { return c !== ''; }).forEach(cb);
	}

	fn.hasClass = function(name) {
		return this.toArray().some(function(el) { return classes(el).indexOf(name) !== -1; });
	};
	fn.addClass = function(names) {
		return this.each(function() {
			var el = this, list = classes(el);
			eachClass(names, function(c) { if (list.indexOf(c) === -1) { list.push(c); } });
			el.className = list.join(' ');
		});
	};
	fn.removeClass = function(names) {
		return this.each(function() {
			var el = this;
			if (names === undefined) { el.className = ''; return; }
			var list = classes(el);
			eachClass(names, function(c) { list = list.filter(function(x) { return x !== c; }); });
			el.className = list.join(' ');
		});
	};
	fn.toggleClass = function(names, state) {
		return this.each(function() {
			var $el = jQuery(this);
			eachClass(names, function(c) {
				var add = state === undefined ? !$el.hasClass(c) : !!state;
				if (add) { $el.addClass(c); } else { $el.removeClass(c); }
			});
		});
	};

	fn.remove = function(selector) {
		filterBy(this.toArray(), selector).forEach(function(el) {
			if (el.parentNode) { el.parentNode.removeChild(el); }
		});
		return this;
	};
	fn.empty = function() {
		return this.each(function() { this.textContent = ''; });
	};

	function formFields(set) {
		var out = [];
		set.each(function() {
			var fields = this.tagName === 'FORM' ? toArray(this.querySelectorAll('input, select, textarea')) : [this];
			fields.forEach(function(f) {
				if (!f.name || f.disabled) { return; }
				if ((f.type === 'checkbox' || f.type === 'radio') && !f.checked) { return; }
				if (f.type === 'submit' || f.type === 'button' || f.type === 'file' || f.type === 'reset') { return; }
				out.push({ name: f.name, value: f.value });
			});
		});
		return out;
	}

	fn.serializeArray = function() { return formFields(this); };
	fn.serialize = function() {
		return formFields(this).map(function(f) {
			return encodeURIComponent(f.name) + '=' + encodeURIComponent(f.value);
		}).join('&').replace(/%20/g, '+');
	};

	function display(visible) {
		return function(el) {
			var style = parseStyle(el);
			style.display = visible ? '' : 'none';
			writeStyle(el, style);
		};
	}

	function visible(el) { return parseStyle(el).display !== 'none'; }

	function effect(apply) {
		return function() {
			var args = Array.prototype.slice.call(arguments);
			var done = args.filter(isFunction)[0];
			return this.each(function() {
				apply(this);
				if (done) { done.call(this); }
			});
		};
	}

	var show = display(true), hide = display(false);
	var toggle = function(el) { if (visible(el)) { hide(el); } else { show(el); } };
	function opacity(value) {
		return function(el) {
			var style = parseStyle(el);
			style.opacity = String(value);
			writeStyle(el, style);
		};
	}

	fn.show = effect(show);
	fn.hide = effect(hide);
	fn.toggle = effect(toggle);
	fn.slideDown = effect(show);
	fn.slideUp = effect(hide);
	fn.slideToggle = effect(toggle);
	fn.fadeIn = effect(function(el) { show(el); opacity(1)(el); });
	fn.fadeOut = effect(function(el) { hide(el); opacity(0)(el); });
	fn.fadeToggle = effect(function(el) { if (visible(el)) { hide(el); opacity(0)(el); } else { show(el); opacity(1)(el); } });
	fn.fadeTo = function(duration, value) {
		return effect(opacity(value)).apply(this, Array.prototype.slice.call(arguments, 2));
	};

	function handlers(el, type) {
		var all = eventStore.get(el);
		if (!all) { all = {}; eventStore.set(el, all); }
		if (!all[type]) { all[type] = []; }
		return all[type];
	}

	function dispatch(el, type, data) {
		var event = { type: type, target: el, data: data, defaultPrevented: false,
			preventDefault: function() { this.defaultPrevented = true; } };
		var result;
		handlers(el, type).slice().forEach(function(h) {
			result = h.apply(el, [event].concat(data || []));
		});
		return result;
	}

	fn.on = function(type, handler) {
		return this.each(function() { handlers(this, type).push(handler); });
	};
	fn.bind = fn.on;
	fn.off = function(type, handler) {
		return this.each(function() {
			var list = handlers(this, type);
			var keep = handler ? list.filter(function(h) { return h !== handler; }) : [];
			list.length = 0;
			Array.prototype.push.apply(list, keep);
		});
	};
	fn.trigger = function(type, data) {
		return this.each(function() { dispatch(this, type, data); });
	};
	fn.triggerHandler = function(type, data) {
		return this.length ? dispatch(this[0], type, data) : undefined;
	};

	['blur', 'focus', 'change', 'click', 'dblclick', 'keyup', 'keydown', 'keypress',
		'mouseup', 'mousedown', 'mouseout', 'mouseover', 'mousemove', 'mouseenter',
		'mouseleave', 'resize', 'scroll', 'submit', 'select'].forEach(function(type) {
		fn[type] = function(handler) {
			return handler === undefined ? this.trigger(type) : this.on(type, handler);
		};
	});

	window.jQuery = window.$ = jQuery;
})(window, document);`
