package synth

// The templates below fabricate syntactically valid, plausible PHP for each
// basename category. Every template opens with a comment stating that the
// content is reconstructed, so the provenance survives in the artifact
// itself as well as in the diagnostics report.

const hooksTemplate = `<?php
/**
 * Reconstructed replacement for protected file "{{.Basename}}.php"
 * (declared version {{.Version}}). Generated, not recovered.
 */

class HookManager {
    private $hooks = [];
    private $filters = [];

    public function add_hook($tag, $function_to_add, $priority = 10, $accepted_args = 1) {
        if (!isset($this->hooks[$tag])) {
            $this->hooks[$tag] = [];
        }
        $this->hooks[$tag][] = [
            'function' => $function_to_add,
            'priority' => $priority,
            'accepted_args' => $accepted_args
        ];
        usort($this->hooks[$tag], function($a, $b) {
            return $a['priority'] - $b['priority'];
        });
        return true;
    }

    public function do_action($tag, ...$args) {
        if (!isset($this->hooks[$tag])) {
            return;
        }
        foreach ($this->hooks[$tag] as $hook) {
            if (is_callable($hook['function'])) {
                $hook_args = array_slice($args, 0, $hook['accepted_args']);
                call_user_func_array($hook['function'], $hook_args);
            }
        }
    }

    public function add_filter($tag, $function_to_add, $priority = 10, $accepted_args = 1) {
        if (!isset($this->filters[$tag])) {
            $this->filters[$tag] = [];
        }
        $this->filters[$tag][] = [
            'function' => $function_to_add,
            'priority' => $priority,
            'accepted_args' => $accepted_args
        ];
        usort($this->filters[$tag], function($a, $b) {
            return $a['priority'] - $b['priority'];
        });
        return true;
    }

    public function apply_filters($tag, $value, ...$args) {
        if (!isset($this->filters[$tag])) {
            return $value;
        }
        foreach ($this->filters[$tag] as $filter) {
            if (is_callable($filter['function'])) {
                $filter_args = array_merge([$value], array_slice($args, 0, $filter['accepted_args'] - 1));
                $value = call_user_func_array($filter['function'], $filter_args);
            }
        }
        return $value;
    }

    public function remove_hook($tag, $function_to_remove) {
        if (!isset($this->hooks[$tag])) {
            return false;
        }
        foreach ($this->hooks[$tag] as $key => $hook) {
            if ($hook['function'] === $function_to_remove) {
                unset($this->hooks[$tag][$key]);
                return true;
            }
        }
        return false;
    }
}

$hook_manager = new HookManager();

function add_hook($tag, $function_to_add, $priority = 10, $accepted_args = 1) {
    global $hook_manager;
    return $hook_manager->add_hook($tag, $function_to_add, $priority, $accepted_args);
}

function do_action($tag, ...$args) {
    global $hook_manager;
    return $hook_manager->do_action($tag, ...$args);
}

function add_filter($tag, $function_to_add, $priority = 10, $accepted_args = 1) {
    global $hook_manager;
    return $hook_manager->add_filter($tag, $function_to_add, $priority, $accepted_args);
}

function apply_filters($tag, $value, ...$args) {
    global $hook_manager;
    return $hook_manager->apply_filters($tag, $value, ...$args);
}
`

const adminTemplate = `<?php
/**
 * Reconstructed replacement for protected file "{{.Basename}}.php"
 * (declared version {{.Version}}). Generated, not recovered.
 */

class AdminPanel {
    private $settings = [];
    private $authenticated = false;

    public function authenticate($user, $token) {
        if (empty($user) || empty($token)) {
            return false;
        }
        $this->authenticated = hash_equals($this->expected_token($user), $token);
        return $this->authenticated;
    }

    public function get_setting($key, $default = null) {
        return isset($this->settings[$key]) ? $this->settings[$key] : $default;
    }

    public function set_setting($key, $value) {
        if (!$this->authenticated) {
            return false;
        }
        $this->settings[$key] = $value;
        return true;
    }

    public function render() {
        if (!$this->authenticated) {
            return '<p>Access denied</p>';
        }
        $out = '<div class="admin-panel">';
        foreach ($this->settings as $key => $value) {
            $out .= '<div>' . htmlspecialchars($key) . ': ' . htmlspecialchars((string)$value) . '</div>';
        }
        return $out . '</div>';
    }

    private function expected_token($user) {
        return hash('sha256', $user . '|{{.Basename}}');
    }
}
`

const configTemplate = `<?php
/**
 * Reconstructed replacement for protected file "{{.Basename}}.php"
 * (declared version {{.Version}}). Generated, not recovered.
 */

$config = [
    'name' => '{{.Basename}}',
    'version' => '{{.Version}}',
    'debug' => false,
    'paths' => [
        'base' => __DIR__,
        'cache' => __DIR__ . '/cache',
        'logs' => __DIR__ . '/logs',
    ],
    'limits' => [
        'max_upload' => 8388608,
        'timeout' => 30,
    ],
    'features' => [
        'hooks' => true,
        'admin' => true,
    ],
];

return $config;
`

const classTemplate = `<?php
/**
 * Reconstructed replacement for protected file "{{.Basename}}.php"
 * (declared version {{.Version}}). Generated, not recovered.
 */

class {{.ClassName}} {
    private $attributes = [];

    public function __construct(array $attributes = []) {
        $this->attributes = $attributes;
    }

    public function get($key, $default = null) {
        return isset($this->attributes[$key]) ? $this->attributes[$key] : $default;
    }

    public function set($key, $value) {
        $this->attributes[$key] = $value;
        return $this;
    }

    public function toArray() {
        return $this->attributes;
    }
}
`

const genericTemplate = `<?php
/**
 * Reconstructed replacement for protected file "{{.Basename}}.php"
 * (declared version {{.Version}}). Generated, not recovered.
 */

function {{.FuncBase}}_init() {
    $state = [
        'name' => '{{.Basename}}',
        'version' => '{{.Version}}',
        'ready' => true,
    ];
    return $state;
}

function {{.FuncBase}}_process($input) {
    $state = {{.FuncBase}}_init();
    if (!$state['ready']) {
        return null;
    }
    return $input;
}
`
