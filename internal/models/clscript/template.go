package clscript

// bannerScriptSource est le script embarquable complet. Il doit rester
// autonome et silencieux : aucune exception ne doit remonter jusqu'au
// site hôte, d'où l'enveloppe try/catch globale.
//
// Attention : pas de backquote ni de séquence "{{" dans le JS, le
// fichier est un template text/template.
const bannerScriptSource = `(function() {
  "use strict";
  try {

  var PROJECT_ID = "{{.ProjectID}}";
  var API_BASE = "{{.APIBase}}";
  var CONFIG = {{.ConfigJSON}};
  var STORAGE_KEY = "lc_consent_" + PROJECT_ID;
  var CONFIG_VERSION = 1;

  // Mots-clés par catégorie pour la suppression best-effort des
  // cookies après un refus. Les cookies techniques (session, auth,
  // csrf et notre propre stockage) ne sont jamais touchés.
  var COOKIE_KEYWORDS = {
    analytics: ["_ga", "_gid", "_gat", "gtm", "analytics", "matomo", "_pk_", "amplitude", "mixpanel", "hotjar", "_hj"],
    marketing: ["_fb", "fbp", "fbc", "ads", "doubleclick", "_gcl", "track", "campaign", "utm", "criteo", "taboola"],
    preferences: ["pref", "lang", "locale", "theme", "timezone", "currency"]
  };
  var PROTECTED_KEYWORDS = ["session", "sess", "auth", "token", "csrf", "xsrf", "lc_consent"];

  function readStored() {
    try {
      var raw = localStorage.getItem(STORAGE_KEY);
      if (!raw) return null;
      var parsed = JSON.parse(raw);
      if (!parsed || typeof parsed.consents !== "object") return null;
      return parsed;
    } catch (e) {
      return null;
    }
  }

  function writeStored(consents) {
    try {
      localStorage.setItem(STORAGE_KEY, JSON.stringify({
        consents: consents,
        timestamp: new Date().toISOString(),
        version: CONFIG_VERSION
      }));
    } catch (e) { /* stockage indisponible, la bannière reviendra */ }
  }

  // Signal "consent mode" pour les tags qui l'écoutent
  function signalConsent(consents) {
    try {
      window.dataLayer = window.dataLayer || [];
      function gtag() { window.dataLayer.push(arguments); }
      gtag("consent", "update", {
        analytics_storage: consents.analytics ? "granted" : "denied",
        ad_storage: consents.marketing ? "granted" : "denied",
        ad_user_data: consents.marketing ? "granted" : "denied",
        ad_personalization: consents.marketing ? "granted" : "denied",
        functionality_storage: consents.preferences ? "granted" : "denied"
      });
    } catch (e) {}
  }

  function loadScriptOnce(id, src, onload) {
    if (document.getElementById(id)) return;
    var s = document.createElement("script");
    s.id = id;
    s.async = true;
    s.src = src;
    if (onload) s.onload = onload;
    document.head.appendChild(s);
  }

  // Chargement conditionnel des intégrations tierces : uniquement si
  // la catégorie correspondante est accordée, jamais deux fois
  function applyIntegrations(consents) {
    var tagId = CONFIG.integrations && CONFIG.integrations.analytics_tag_id;
    if (consents.analytics && tagId) {
      loadScriptOnce("lc-gtag", "https://www.googletagmanager.com/gtag/js?id=" + encodeURIComponent(tagId), function() {
        try {
          window.dataLayer = window.dataLayer || [];
          function gtag() { window.dataLayer.push(arguments); }
          gtag("js", new Date());
          gtag("config", tagId, { anonymize_ip: true });
        } catch (e) {}
      });
    }

    var pixelId = CONFIG.integrations && CONFIG.integrations.ads_pixel_id;
    if (consents.marketing && pixelId && !window._lcPixelLoaded) {
      window._lcPixelLoaded = true;
      loadScriptOnce("lc-pixel", "https://connect.facebook.net/en_US/fbevents.js", function() {
        try {
          if (window.fbq) {
            window.fbq("init", pixelId);
            window.fbq("track", "PageView");
          }
        } catch (e) {}
      });
    }
  }

  function isProtected(name) {
    var lower = name.toLowerCase();
    for (var i = 0; i < PROTECTED_KEYWORDS.length; i++) {
      if (lower.indexOf(PROTECTED_KEYWORDS[i]) !== -1) return true;
    }
    return false;
  }

  function matchesCategory(name, category) {
    var lower = name.toLowerCase();
    var keywords = COOKIE_KEYWORDS[category] || [];
    for (var i = 0; i < keywords.length; i++) {
      if (lower.indexOf(keywords[i]) !== -1) return true;
    }
    return false;
  }

  function expireCookie(name) {
    var expiry = "=; expires=Thu, 01 Jan 1970 00:00:00 GMT; path=/";
    document.cookie = name + expiry;
    document.cookie = name + expiry + "; domain=" + location.hostname;
    document.cookie = name + expiry + "; domain=." + location.hostname;
  }

  // Purge best-effort des cookies des catégories refusées. Les cookies
  // HttpOnly restent hors de portée, c'est assumé.
  function purgeRefusedCookies(consents) {
    try {
      var cookies = document.cookie.split(";");
      for (var i = 0; i < cookies.length; i++) {
        var name = cookies[i].split("=")[0];
        if (name) name = name.replace(/^\s+|\s+$/g, "");
        if (!name || isProtected(name)) continue;

        var refused =
          (!consents.analytics && matchesCategory(name, "analytics")) ||
          (!consents.marketing && matchesCategory(name, "marketing")) ||
          (!consents.preferences && matchesCategory(name, "preferences"));
        if (refused) expireCookie(name);
      }
    } catch (e) {}
  }

  // Envoi au backend, fire-and-forget : un échec réseau ne doit jamais
  // perturber le site hôte ni bloquer l'application locale du choix
  function submitConsent(consents) {
    try {
      fetch(API_BASE + "/consents", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify({
          projectId: PROJECT_ID,
          domain: location.hostname,
          consents: consents,
          timestamp: new Date().toISOString()
        }),
        keepalive: true
      }).catch(function() {});
    } catch (e) {}
  }

  function applyConsent(consents, send) {
    signalConsent(consents);
    applyIntegrations(consents);
    purgeRefusedCookies(consents);
    writeStored(consents);
    if (send) submitConsent(consents);
  }

  // --- Rendu de la bannière -------------------------------------------

  var C = CONFIG.colors;
  var T = CONFIG.texts;

  function styled(el, css) {
    el.setAttribute("style", css);
    return el;
  }

  function button(label, primary) {
    var b = document.createElement("button");
    b.innerHTML = label;
    var base = "margin:4px;padding:9px 18px;border:0;border-radius:6px;cursor:pointer;font-size:14px;font-family:inherit;";
    if (primary) {
      styled(b, base + "background:" + C.button + ";color:" + C.button_text + ";");
      b.onmouseover = function() { b.style.background = CONFIG.buttonHover; };
      b.onmouseout = function() { b.style.background = C.button; };
    } else {
      styled(b, base + "background:transparent;color:" + C.text + ";border:1px solid " + C.text + ";");
    }
    return b;
  }

  function categoryRow(panel, key, label, granted) {
    var row = styled(document.createElement("label"),
      "display:flex;align-items:center;justify-content:space-between;padding:6px 0;cursor:pointer;font-size:14px;");
    var span = document.createElement("span");
    span.textContent = label;
    var box = document.createElement("input");
    box.type = "checkbox";
    box.checked = granted;
    box.setAttribute("data-lc-category", key);
    row.appendChild(span);
    row.appendChild(box);
    panel.appendChild(row);
    return box;
  }

  function removeBanner() {
    var el = document.getElementById("lc-banner");
    if (el) el.remove();
  }

  function showBanner() {
    if (document.getElementById("lc-banner")) return;

    var position = CONFIG.layout === "top" ? "top:0;" : "bottom:0;";
    var banner = styled(document.createElement("div"),
      "position:fixed;" + position + "left:0;right:0;z-index:2147483000;" +
      "background:" + C.background + ";color:" + C.text + ";" +
      "padding:16px 20px;font-family:system-ui,sans-serif;font-size:14px;line-height:1.5;" +
      "box-shadow:0 0 12px rgba(0,0,0,0.25);");
    banner.id = "lc-banner";
    banner.setAttribute("role", "dialog");
    banner.setAttribute("aria-label", CONFIG.messagePlain);

    var inner = styled(document.createElement("div"), "max-width:960px;margin:0 auto;");

    if (CONFIG.logoUrl) {
      var logo = document.createElement("img");
      logo.src = CONFIG.logoUrl;
      logo.alt = "";
      styled(logo, "height:28px;float:left;margin-right:12px;");
      inner.appendChild(logo);
    }

    var title = styled(document.createElement("div"), "font-weight:600;margin-bottom:4px;");
    title.innerHTML = CONFIG.titleHtml;
    inner.appendChild(title);

    var message = document.createElement("div");
    message.innerHTML = CONFIG.messageHtml;
    inner.appendChild(message);

    var panel = styled(document.createElement("div"),
      "display:none;margin-top:10px;padding-top:10px;border-top:1px solid rgba(255,255,255,0.2);max-width:360px;");
    var boxes = {};
    if (CONFIG.categories.analytics) boxes.analytics = categoryRow(panel, "analytics", "Analytics", true);
    if (CONFIG.categories.marketing) boxes.marketing = categoryRow(panel, "marketing", "Marketing", true);
    if (CONFIG.categories.preferences) boxes.preferences = categoryRow(panel, "preferences", "Preferenze", true);
    inner.appendChild(panel);

    function collect(all) {
      return {
        necessary: true,
        analytics: all !== null ? all : !!(boxes.analytics && boxes.analytics.checked),
        marketing: all !== null ? all : !!(boxes.marketing && boxes.marketing.checked),
        preferences: all !== null ? all : !!(boxes.preferences && boxes.preferences.checked)
      };
    }

    var actions = styled(document.createElement("div"), "margin-top:12px;");

    var accept = button(T.accept_all, true);
    accept.onclick = function() { applyConsent(collect(true), true); removeBanner(); showFloatingIcon(); };
    actions.appendChild(accept);

    var reject = button(T.reject_all, false);
    reject.onclick = function() { applyConsent(collect(false), true); removeBanner(); showFloatingIcon(); };
    actions.appendChild(reject);

    var customize = button(T.customize, false);
    var save = button(T.save, true);
    save.style.display = "none";
    customize.onclick = function() {
      var open = panel.style.display === "block";
      panel.style.display = open ? "none" : "block";
      save.style.display = open ? "none" : "inline-block";
    };
    actions.appendChild(customize);

    save.onclick = function() { applyConsent(collect(null), true); removeBanner(); showFloatingIcon(); };
    actions.appendChild(save);

    inner.appendChild(actions);
    banner.appendChild(inner);
    document.body.appendChild(banner);
  }

  // Icône flottante de réouverture : permet de changer d'avis après
  // fermeture de la bannière
  function showFloatingIcon() {
    if (!CONFIG.floatingIcon || !CONFIG.floatingIcon.enabled) return;
    if (document.getElementById("lc-reopen")) return;

    var side = CONFIG.floatingIcon.position === "right" ? "right:16px;" : "left:16px;";
    var icon = styled(document.createElement("button"),
      "position:fixed;bottom:16px;" + side + "z-index:2147483000;" +
      "width:44px;height:44px;border-radius:50%;border:0;cursor:pointer;font-size:20px;" +
      "background:" + C.button + ";color:" + C.button_text + ";box-shadow:0 2px 8px rgba(0,0,0,0.3);");
    icon.id = "lc-reopen";
    icon.textContent = "🍪";
    icon.setAttribute("aria-label", CONFIG.messagePlain);
    icon.onclick = function() {
      icon.remove();
      showBanner();
    };
    document.body.appendChild(icon);
  }

  function start() {
    var stored = readStored();
    if (stored) {
      // Choix déjà exprimé : réappliquer sans réafficher la bannière
      applyConsent(stored.consents, false);
      showFloatingIcon();
      return;
    }
    showBanner();
  }

  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", start);
  } else {
    start();
  }

  } catch (e) { /* jamais d'exception vers le site hôte */ }
})();
`
